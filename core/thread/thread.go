// Package thread implements the append-only, event-sourced thread log:
// one JSONL file per thread under the threads directory, a Meta event
// written once at the start of a new file, and pure-function
// derivations (API messages, transcript, usage, title) computed by
// replaying the event stream rather than kept as separate mutable
// state.
package thread

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tallesborges/zdx/providers/ai"
)

const schemaVersion = 1

// EventType tags the union stored in each JSONL line.
type EventType string

const (
	EventMeta        EventType = "meta"
	EventMessage     EventType = "message"
	EventToolUse     EventType = "tool_use"
	EventToolResult  EventType = "tool_result"
	EventUsage       EventType = "usage"
	EventInterrupted EventType = "interrupted"
	EventTitleSet    EventType = "title_set"
	EventRootPath    EventType = "root_path"
)

// Event is the tagged union persisted to the thread log. Only the
// fields relevant to Type are populated; json omitempty keeps the
// on-disk line minimal per event kind.
type Event struct {
	Type          EventType       `json:"type"`
	Timestamp     string          `json:"timestamp"` // RFC3339, UTC, second precision
	SchemaVersion int             `json:"schema_version,omitempty"`
	ParentID      string          `json:"parent_id,omitempty"`

	// Meta fields (HandoffFrom is the parent thread id when this thread
	// was created via handoff; empty for a root thread)
	HandoffFrom string `json:"handoff_from,omitempty"`

	// Message fields
	Role string `json:"role,omitempty"`
	Text string `json:"text,omitempty"`

	// ToolUse fields
	ToolUseID string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`

	// ToolResult fields
	ToolUseRefID string          `json:"tool_use_id,omitempty"`
	Output       json.RawMessage `json:"output,omitempty"`
	Ok           bool            `json:"ok,omitempty"`

	// Usage fields: one request's token delta
	Usage *ai.Usage `json:"usage,omitempty"`

	// TitleSet fields
	Title string `json:"title,omitempty"`

	// RootPath fields
	Path string `json:"path,omitempty"`
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// MetaEvent builds the schema-versioned Meta event every new thread
// file starts with. handoffFrom is the parent thread id when this
// thread was created via handoff, or "" for a root thread.
func MetaEvent(handoffFrom string) Event {
	return Event{Type: EventMeta, Timestamp: nowStamp(), SchemaVersion: schemaVersion, HandoffFrom: handoffFrom}
}

// UsageEvent builds a Usage event recording one request's token delta.
// The turn loop appends one of these per model request so cumulative
// usage can be reconstructed purely from the event log.
func UsageEvent(u ai.Usage) Event {
	return Event{Type: EventUsage, Timestamp: nowStamp(), Usage: &u}
}

// TitleSetEvent builds an event recording a (re)named thread title.
// Later occurrences in the log win; setting the same title twice is
// well-defined (a harmless no-op on replay).
func TitleSetEvent(title string) Event {
	return Event{Type: EventTitleSet, Timestamp: nowStamp(), Title: title}
}

// RootPathEvent builds an event recording the working directory the
// thread is rooted at.
func RootPathEvent(path string) Event {
	return Event{Type: EventRootPath, Timestamp: nowStamp(), Path: path}
}

// MessageEvent builds a Message event for a user or assistant turn.
func MessageEvent(role, text string) Event {
	return Event{Type: EventMessage, Timestamp: nowStamp(), Role: role, Text: text}
}

// ToolUseEvent builds a ToolUse event for a requested tool call.
func ToolUseEvent(id, name string, input json.RawMessage) Event {
	return Event{Type: EventToolUse, Timestamp: nowStamp(), ToolUseID: id, Name: name, Input: input}
}

// ToolResultEvent builds a ToolResult event for a completed tool call.
func ToolResultEvent(toolUseID string, output json.RawMessage, ok bool) Event {
	return Event{Type: EventToolResult, Timestamp: nowStamp(), ToolUseRefID: toolUseID, Output: output, Ok: ok}
}

// InterruptedEvent marks the thread as interrupted mid-turn.
func InterruptedEvent() Event {
	return Event{Type: EventInterrupted, Timestamp: nowStamp()}
}

// Log is a single thread's append-only JSONL file.
type Log struct {
	ID    string
	path  string
	isNew bool

	// HandoffFrom is the parent thread id to record on the Meta event.
	// Set it before the first Append call on a brand-new thread; it has
	// no effect once the Meta line has already been written.
	HandoffFrom string
}

// Dir returns the directory zdx stores thread logs in.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("thread: resolving config dir: %w", err)
	}
	return filepath.Join(dir, "zdx", "threads"), nil
}

// New creates a fresh thread log with a generated id.
func New() (*Log, error) {
	return WithID(uuid.NewString())
}

// NewHandoff creates a fresh thread log whose Meta event records
// parentID as handoff_from, linking it into the parent's subtree for
// Tree.
func NewHandoff(parentID string) (*Log, error) {
	l, err := New()
	if err != nil {
		return nil, err
	}
	l.HandoffFrom = parentID
	return l, nil
}

// WithID opens (or prepares to create) the thread log for a known id.
func WithID(id string) (*Log, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("thread: creating threads dir: %w", err)
	}
	path := filepath.Join(dir, id+".jsonl")
	_, statErr := os.Stat(path)
	return &Log{ID: id, path: path, isNew: os.IsNotExist(statErr)}, nil
}

// Append writes event to the log, first writing the Meta event if this
// is a brand-new thread file and event isn't itself a Meta event.
func (l *Log) Append(event Event) error {
	if l.isNew && event.Type != EventMeta {
		if err := l.appendRaw(MetaEvent(l.HandoffFrom)); err != nil {
			return err
		}
		l.isNew = false
	}
	return l.appendRaw(event)
}

// SetTitle appends a TitleSet event. Readers treat the last occurrence
// in the log as authoritative.
func (l *Log) SetTitle(title string) error {
	return l.Append(TitleSetEvent(title))
}

// SetRootPath appends a RootPath event. Readers treat the last
// occurrence in the log as authoritative.
func (l *Log) SetRootPath(path string) error {
	return l.Append(RootPathEvent(path))
}

func (l *Log) appendRaw(event Event) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("thread: opening %s: %w", l.path, err)
	}
	defer f.Close()

	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("thread: marshaling event: %w", err)
	}
	if _, err := f.Write(append(raw, '\n')); err != nil {
		return fmt.Errorf("thread: writing event: %w", err)
	}
	return nil
}

// ReadEvents replays the full event stream for the log. Lines that fail
// to parse are skipped rather than aborting the read, so a thread log
// remains readable even if a future schema version adds an event kind
// this build doesn't know about.
func (l *Log) ReadEvents() ([]Event, error) {
	return readEvents(l.path)
}

func readEvents(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("thread: opening %s: %w", path, err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("thread: scanning %s: %w", path, err)
	}
	return events, nil
}

// Info describes a thread log on disk, for `zdx threads list`.
type Info struct {
	ID          string
	Title       string
	HandoffFrom string
	Modified    time.Time
}

// List enumerates saved threads, newest first.
func List() ([]Info, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("thread: reading threads dir: %w", err)
	}

	var infos []Info
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".jsonl" {
			continue
		}
		id := entry.Name()[:len(entry.Name())-len(".jsonl")]
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		events, err := readEvents(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		infos = append(infos, Info{
			ID:          id,
			Title:       Title(events),
			HandoffFrom: HandoffFrom(events),
			Modified:    fi.ModTime(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Modified.After(infos[j].Modified) })
	return infos, nil
}

// Node is one thread in the flattened handoff forest, positioned at
// Depth (0 for a root).
type Node struct {
	Info
	Depth int
}

// Tree builds the handoff forest from infos (as returned by List) and
// flattens it depth-first pre-order, children in input order. A thread
// whose HandoffFrom names a thread not present in infos becomes an
// additional root. Cycles in the handoff chain (malformed data) are
// broken defensively with a visited set: a thread already on the
// current path is dropped rather than recursed into again.
func Tree(infos []Info) []Node {
	byID := make(map[string]Info, len(infos))
	childrenOf := make(map[string][]string)
	order := make(map[string]int, len(infos))
	for i, info := range infos {
		byID[info.ID] = info
		order[info.ID] = i
		if info.HandoffFrom != "" {
			childrenOf[info.HandoffFrom] = append(childrenOf[info.HandoffFrom], info.ID)
		}
	}

	var roots []string
	for _, info := range infos {
		if info.HandoffFrom == "" {
			roots = append(roots, info.ID)
			continue
		}
		if _, ok := byID[info.HandoffFrom]; !ok {
			roots = append(roots, info.ID) // orphan: parent missing
		}
	}
	sort.Slice(roots, func(i, j int) bool { return order[roots[i]] < order[roots[j]] })

	var out []Node
	var visit func(id string, depth int, path map[string]bool)
	visit = func(id string, depth int, path map[string]bool) {
		if path[id] {
			return // cycle: id already an ancestor on this path
		}
		info, ok := byID[id]
		if !ok {
			return
		}
		out = append(out, Node{Info: info, Depth: depth})
		path[id] = true
		kids := childrenOf[id]
		sort.Slice(kids, func(i, j int) bool { return order[kids[i]] < order[kids[j]] })
		for _, kid := range kids {
			visit(kid, depth+1, path)
		}
		delete(path, id)
	}
	for _, root := range roots {
		visit(root, 0, map[string]bool{})
	}
	return out
}

// Load reads the full event stream for a saved thread by id.
func Load(id string) ([]Event, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return readEvents(filepath.Join(dir, id+".jsonl"))
}

// Remove deletes a thread log file.
func Remove(id string) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(dir, id+".jsonl")); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("thread: removing %s: %w", id, err)
	}
	return nil
}

// ToMessages replays events into the ai.Message slice a provider
// request needs. The closed three-role model has no independent "tool"
// message: every tool_use event the assistant emitted is grouped into
// one assistant message, and the tool_result events answering them are
// folded into exactly one following user message's ToolResults, in the
// same order the calls were made. A provider's own conversion layer
// decides how to re-expand that single user message into its wire
// protocol.
func ToMessages(events []Event) []ai.Message {
	var messages []ai.Message
	var pendingCalls []ai.ToolCall
	var pendingResults []ai.ToolResultBlock
	names := map[string]string{}

	flushPending := func() {
		if len(pendingCalls) == 0 {
			return
		}
		messages = append(messages, ai.Message{Role: ai.RoleAssistant, ToolCalls: pendingCalls})
		if len(pendingResults) > 0 {
			messages = append(messages, ai.Message{Role: ai.RoleUser, ToolResults: pendingResults})
		}
		pendingCalls = nil
		pendingResults = nil
	}

	for _, event := range events {
		switch event.Type {
		case EventMeta:
			continue
		case EventMessage:
			flushPending()
			messages = append(messages, ai.Message{Role: ai.MessageRole(event.Role), Content: event.Text})
		case EventToolUse:
			names[event.ToolUseID] = event.Name
			pendingCalls = append(pendingCalls, ai.ToolCall{
				ID:   event.ToolUseID,
				Type: "function",
				Function: ai.ToolCallFunction{
					Name:      event.Name,
					Arguments: string(event.Input),
				},
			})
		case EventToolResult:
			pendingResults = append(pendingResults, ai.ToolResultBlock{
				ToolCallID: event.ToolUseRefID,
				Name:       names[event.ToolUseRefID],
				Content:    string(event.Output),
				IsError:    !event.Ok,
			})
		case EventUsage, EventTitleSet, EventRootPath, EventInterrupted:
			continue
		}
	}
	flushPending()
	return messages
}

// Title returns the thread's current title, the text of the last
// TitleSet event, or "" if the thread has never been titled.
func Title(events []Event) string {
	title := ""
	for _, event := range events {
		if event.Type == EventTitleSet {
			title = event.Title
		}
	}
	return title
}

// RootPath returns the thread's current working-directory root: the
// text of the last RootPath event, or "" if there is none.
func RootPath(events []Event) string {
	path := ""
	for _, event := range events {
		if event.Type == EventRootPath {
			path = event.Path
		}
	}
	return path
}

// HandoffFrom returns the parent thread id recorded on this thread's
// Meta event, or "" for a root thread.
func HandoffFrom(events []Event) string {
	for _, event := range events {
		if event.Type == EventMeta {
			return event.HandoffFrom
		}
	}
	return ""
}

// UsageFromEvents sums every Usage event's per-request delta, giving
// the thread's cumulative token usage as a pure fold over the log.
func UsageFromEvents(events []Event) ai.Usage {
	var deltas []ai.Usage
	for _, event := range events {
		if event.Type == EventUsage && event.Usage != nil {
			deltas = append(deltas, *event.Usage)
		}
	}
	return Usage(deltas)
}

// Usage sums a set of per-request token deltas. UsageFromEvents is the
// usual entry point for a thread log; this helper takes the deltas
// directly.
func Usage(deltas []ai.Usage) ai.Usage {
	var total ai.Usage
	for _, d := range deltas {
		total.PromptTokens += d.PromptTokens
		total.CompletionTokens += d.CompletionTokens
		total.TotalTokens += d.TotalTokens
		total.ReasoningTokens += d.ReasoningTokens
		total.CachedTokens += d.CachedTokens
	}
	return total
}

// Transcript renders a human-readable rendition of the event stream,
// used by `zdx threads show`.
func Transcript(events []Event) string {
	var out []byte
	write := func(s string) { out = append(out, s...) }

	for _, event := range events {
		switch event.Type {
		case EventMeta:
			write(fmt.Sprintf("### Thread (schema v%d)\n\n", event.SchemaVersion))
		case EventMessage:
			label := event.Role
			switch event.Role {
			case "user":
				label = "You"
			case "assistant":
				label = "Assistant"
			}
			write(fmt.Sprintf("### %s\n%s\n\n", label, event.Text))
		case EventToolUse:
			write(fmt.Sprintf("### Tool: %s\n```json\n%s\n```\n\n", event.Name, event.Input))
		case EventToolResult:
			status := "✓"
			if !event.Ok {
				status = "✗"
			}
			write(fmt.Sprintf("### Result %s\n```json\n%s\n```\n\n", status, event.Output))
		case EventInterrupted:
			write("### Interrupted\n\n")
		case EventTitleSet:
			write(fmt.Sprintf("### Title: %s\n\n", event.Title))
		case EventRootPath, EventUsage:
			continue
		}
	}
	return string(out)
}
