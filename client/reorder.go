package client

import "errors"

var errUnknownRow = errors.New("task not in list")

// Move returns ids with dragged dropped onto target. A row dragged down is
// placed after the target, a row dragged up before it.
func Move(ids []string, dragged, target string) ([]string, error) {
	src, dst := indexOf(ids, dragged), indexOf(ids, target)
	if src < 0 || dst < 0 {
		return nil, errUnknownRow
	}
	out := append([]string(nil), ids...)
	if src == dst {
		return out, nil
	}
	out = append(out[:src], out[src+1:]...)
	// Moving down, removal shifts the target left so dst is the slot after it.
	// Moving up, dst is still the target's own slot.
	return insertAt(out, dst, dragged), nil
}

// Renumber assigns 1-based orders following the sequence.
func Renumber(ids []string) map[string]int {
	orders := make(map[string]int, len(ids))
	for i, id := range ids {
		orders[id] = i + 1
	}
	return orders
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func insertAt(ids []string, i int, id string) []string {
	ids = append(ids, "")
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}
