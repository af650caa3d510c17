package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vyrodovalexey/layerlog/internal/debugreport"
	"github.com/vyrodovalexey/layerlog/internal/flags"
)

// Replay operations.
const (
	opMessage          = "message"
	opLog              = "log"
	opName             = "name"
	opBeginQueueLabel  = "begin-queue-label"
	opEndQueueLabel    = "end-queue-label"
	opInsertQueueLabel = "insert-queue-label"
	opBeginCmdLabel    = "begin-cb-label"
	opEndCmdLabel      = "end-cb-label"
	opInsertCmdLabel   = "insert-cb-label"
	opResetCmdLabels   = "reset-cb-labels"
	opEraseCmdLabels   = "erase-cb-labels"
)

const maxLineSize = 1 << 20

var errNoClassification = errors.New("record needs flags or severity and types")

// record is one line of replay input.
type record struct {
	Op          string     `json:"op,omitempty"`
	Flags       []string   `json:"flags,omitempty"`
	Severity    []string   `json:"severity,omitempty"`
	Types       []string   `json:"types,omitempty"`
	ObjectType  string     `json:"objectType,omitempty"`
	Handle      handle     `json:"handle,omitempty"`
	Location    uint64     `json:"location,omitempty"`
	LayerPrefix string     `json:"layerPrefix,omitempty"`
	ID          string     `json:"id,omitempty"`
	Message     string     `json:"message,omitempty"`
	Name        string     `json:"name,omitempty"`
	Scheme      string     `json:"scheme,omitempty"`
	Color       [4]float32 `json:"color,omitempty"`
}

// handle accepts a JSON number or a string such as "0x1f".
type handle uint64

// UnmarshalJSON implements json.Unmarshaler.
func (h *handle) UnmarshalJSON(b []byte) error {
	s := string(b)
	base := 10
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
		base = 0
	}
	v, err := strconv.ParseUint(strings.TrimSpace(s), base, 64)
	if err != nil {
		return fmt.Errorf("invalid handle %s: %w", string(b), err)
	}
	*h = handle(v)
	return nil
}

// replayStats summarizes a replay.
type replayStats struct {
	Lines    int
	Messages int
	Aborts   int
}

// replay applies every record read from in to the reporter.
func replay(ctx context.Context, r *debugreport.Reporter, in io.Reader) (replayStats, error) {
	var stats replayStats

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Lines++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return stats, fmt.Errorf("line %d: %w", stats.Lines, err)
		}

		dispatched, abort, err := apply(ctx, r, &rec)
		if err != nil {
			return stats, fmt.Errorf("line %d: %w", stats.Lines, err)
		}
		if dispatched {
			stats.Messages++
		}
		if abort {
			stats.Aborts++
		}
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("failed to read input: %w", err)
	}
	return stats, nil
}

// apply executes one record. dispatched is set for message records.
func apply(ctx context.Context, r *debugreport.Reporter, rec *record) (dispatched, abort bool, err error) {
	h := uint64(rec.Handle)
	label := debugreport.Label{Name: rec.Name, Color: rec.Color}

	switch strings.ToLower(rec.Op) {
	case "", opMessage:
		ev, err := rec.event()
		if err != nil {
			return false, false, err
		}
		return true, r.Dispatch(ctx, ev), nil

	case opLog:
		rf, err := flags.ParseReportFlags(rec.Flags)
		if err != nil {
			return false, false, err
		}
		objType, err := parseObjectType(rec.ObjectType)
		if err != nil {
			return false, false, err
		}
		if !r.KnownMessageID(rec.ID) {
			return false, false, fmt.Errorf("unknown message id %q", rec.ID)
		}
		return true, r.LogMsg(ctx, rf, objType, h, rec.ID, "%s", rec.Message), nil

	case opName:
		scheme, err := parseNameScheme(rec.Scheme)
		if err != nil {
			return false, false, err
		}
		r.SetObjectName(scheme, h, rec.Name)
	case opBeginQueueLabel:
		r.BeginQueueLabel(h, label)
	case opEndQueueLabel:
		r.EndQueueLabel(h)
	case opInsertQueueLabel:
		r.InsertQueueLabel(h, label)
	case opBeginCmdLabel:
		r.BeginCommandBufferLabel(h, label)
	case opEndCmdLabel:
		r.EndCommandBufferLabel(h)
	case opInsertCmdLabel:
		r.InsertCommandBufferLabel(h, label)
	case opResetCmdLabels:
		r.ResetCommandBufferLabels(h)
	case opEraseCmdLabels:
		r.EraseCommandBufferLabels(h)
	default:
		return false, false, fmt.Errorf("unknown op %q", rec.Op)
	}
	return false, false, nil
}

// event builds a diagnostic event from the record classification.
func (rec *record) event() (*debugreport.Event, error) {
	objType, err := parseObjectType(rec.ObjectType)
	if err != nil {
		return nil, err
	}

	var ev *debugreport.Event
	switch {
	case len(rec.Flags) > 0:
		rf, err := flags.ParseReportFlags(rec.Flags)
		if err != nil {
			return nil, err
		}
		ev = debugreport.NewReportEvent(rf, objType, uint64(rec.Handle), rec.ID, rec.Message)
	case len(rec.Severity) > 0 && len(rec.Types) > 0:
		sev, err := flags.ParseSeverity(rec.Severity)
		if err != nil {
			return nil, err
		}
		types, err := flags.ParseMessageType(rec.Types)
		if err != nil {
			return nil, err
		}
		ev = debugreport.NewMessengerEvent(sev, types, objType, uint64(rec.Handle), rec.ID, rec.Message)
	default:
		return nil, errNoClassification
	}

	ev.Location = rec.Location
	if rec.LayerPrefix != "" {
		ev.LayerPrefix = rec.LayerPrefix
	}
	return ev, nil
}

func parseObjectType(name string) (debugreport.ObjectType, error) {
	if name == "" {
		return debugreport.ObjectTypeUnknown, nil
	}
	t, ok := debugreport.ParseObjectType(name)
	if !ok {
		return 0, fmt.Errorf("unknown object type %q", name)
	}
	return t, nil
}

func parseNameScheme(name string) (debugreport.NameScheme, error) {
	switch strings.ToLower(name) {
	case "", "utils":
		return debugreport.NameSchemeUtils, nil
	case "marker":
		return debugreport.NameSchemeMarker, nil
	default:
		return 0, fmt.Errorf("unknown name scheme %q", name)
	}
}
