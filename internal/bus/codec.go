package bus

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownRequest is returned for actions and request types the bus does not know
var ErrUnknownRequest = errors.New("unknown request")

var decoders = map[string]func(json.RawMessage) (Request, error){
	AnalyzeMessages{}.Action():        decodeInto[AnalyzeMessages],
	AddImportantContact{}.Action():    decodeInto[AddImportantContact],
	RemoveImportantContact{}.Action(): decodeInto[RemoveImportantContact],
	AddPriorityTag{}.Action():         decodeInto[AddPriorityTag],
	RemovePriorityTag{}.Action():      decodeInto[RemovePriorityTag],
	SetAutomation{}.Action():          decodeInto[SetAutomation],
	ToggleSort{}.Action():             decodeInto[ToggleSort],
	ToggleSpamDetection{}.Action():    decodeInto[ToggleSpamDetection],
	GetState{}.Action():               decodeInto[GetState],
	RefreshMessages{}.Action():        decodeInto[RefreshMessages],
	SendAutomatedResponse{}.Action():  decodeInto[SendAutomatedResponse],
	ProcessUnresponded{}.Action():     decodeInto[ProcessUnresponded],
}

// Actions returns the wire names of every request type
func Actions() []string {
	names := make([]string, 0, len(decoders))
	for name := range decoders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Decode parses a {"action": "...", ...} envelope into its request type
func Decode(data []byte) (Request, error) {
	var envelope struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}

	decode, ok := decoders[envelope.Action]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRequest, envelope.Action)
	}
	return decode(data)
}

func decodeInto[T Request](data json.RawMessage) (Request, error) {
	var req T
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", req.Action(), err)
	}
	return req, nil
}
