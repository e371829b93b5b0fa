package model

import "encoding/json"

func (s RecordSlot[T]) MarshalJSON() ([]byte, error) {
	if s.Err != nil {
		return json.Marshal(s.Err)
	}
	return json.Marshal(s.Records)
}

// OK reports whether the slot holds records rather than an error.
func (s RecordSlot[T]) OK() bool { return s.Err == nil }
