package channel

import (
	"encoding/json"
	"errors"
)

var ErrMalformedCall = errors.New("malformed channel call")

// Call is one inbound method invocation read from the stream.
type Call struct {
	Channel string         `json:"channel"`
	ID      *uint64        `json:"id,omitempty"`
	Method  string         `json:"method"`
	Args    map[string]any `json:"args,omitempty"`
}

// StringArg returns the named argument when it is present and a string. A
// JSON null counts as absent.
func (c Call) StringArg(key string) (string, bool) {
	raw, ok := c.Args[key]
	if !ok || raw == nil {
		return "", false
	}
	value, ok := raw.(string)
	return value, ok
}

type CallError struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// message is the union of every line written to the stream: responses carry
// an id, notifications do not.
type message struct {
	Channel        string          `json:"channel"`
	ID             *uint64         `json:"id,omitempty"`
	Method         string          `json:"method,omitempty"`
	Args           map[string]any  `json:"args,omitempty"`
	Result         json.RawMessage `json:"result,omitempty"`
	Error          *CallError      `json:"error,omitempty"`
	NotImplemented bool            `json:"notImplemented,omitempty"`
}

func decodeCall(line []byte) (Call, error) {
	var call Call
	if err := json.Unmarshal(line, &call); err != nil {
		return Call{}, errors.Join(ErrMalformedCall, err)
	}
	if call.Channel == "" || call.Method == "" {
		return Call{}, ErrMalformedCall
	}
	return call, nil
}

func encodeResult(value any) (json.RawMessage, error) {
	if value == nil {
		return json.RawMessage("null"), nil
	}
	return json.Marshal(value)
}
