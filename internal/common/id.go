package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a numeric identifier in a request body. It decodes from both 7
// and "7"; an empty string is zero.
type ID int64

func (id *ID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*id = 0
			return nil
		}
		b = []byte(s)
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("id %s is not an integer", b)
	}
	*id = ID(n)
	return nil
}
