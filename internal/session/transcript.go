// Package session implements the client-side transcript and its
// reconciliation rules. A live client appends an unconfirmed placeholder the
// moment the user submits, then replaces it with the server-confirmed pair
// when the push transport delivers it. The transcript guarantees that the
// same logical message never appears twice and that a placeholder never
// outlives its confirmation.
//
// Entry identity is a tagged reference (pending local ID vs. confirmed server
// ID) rather than a string prefix convention, so matching and removal are
// type-safe.
package session

import (
	"sync"
	"time"

	"github.com/pmoralis/go-ai-chat/internal/domain"
)

// refKind discriminates the two identifier states an entry can be in.
type refKind int

const (
	refPending refKind = iota
	refConfirmed
)

// Ref identifies a transcript entry. A pending ref carries a client-local ID;
// a confirmed ref carries the store-assigned server ID. The two namespaces
// never mix.
type Ref struct {
	kind     refKind
	localID  string
	serverID string
}

// PendingRef returns the reference for a not-yet-confirmed entry.
func PendingRef(localID string) Ref { return Ref{kind: refPending, localID: localID} }

// ConfirmedRef returns the reference for a server-confirmed entry.
func ConfirmedRef(serverID string) Ref { return Ref{kind: refConfirmed, serverID: serverID} }

// Pending reports whether the ref identifies an unconfirmed placeholder.
func (r Ref) Pending() bool { return r.kind == refPending }

// ServerID returns the server-assigned ID and whether the ref is confirmed.
func (r Ref) ServerID() (string, bool) { return r.serverID, r.kind == refConfirmed }

// LocalID returns the client-local ID and whether the ref is pending.
func (r Ref) LocalID() (string, bool) { return r.localID, r.kind == refPending }

// Entry is one transcript row as the client renders it.
type Entry struct {
	Ref       Ref
	Role      string
	Content   string
	Rating    *int
	CreatedAt time.Time

	// Failed marks a placeholder whose submission the server rejected. The
	// entry stays visible so the user can see what did not go through.
	Failed bool
}

// Transcript is an ordered client-side message sequence. It is safe for
// concurrent use (UI reads while the push transport applies events).
type Transcript struct {
	mu      sync.Mutex
	entries []Entry
	// seen tracks server IDs already applied so redelivered confirmations
	// are no-ops.
	seen map[string]struct{}
}

// NewTranscript returns an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{seen: make(map[string]struct{})}
}

// Load replaces the transcript with server history (e.g. a fetched page).
// All loaded entries are confirmed.
func (t *Transcript) Load(msgs []domain.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = t.entries[:0]
	t.seen = make(map[string]struct{}, len(msgs))
	for _, m := range msgs {
		t.entries = append(t.entries, confirmedEntry(m))
		t.seen[m.ID] = struct{}{}
	}
}

// AppendPending adds an optimistic placeholder for a just-submitted message
// and returns it. The caller supplies the client-local ID.
func (t *Transcript) AppendPending(localID, content string) Entry {
	e := Entry{
		Ref:       PendingRef(localID),
		Role:      domain.RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
	t.mu.Lock()
	t.entries = append(t.entries, e)
	t.mu.Unlock()
	return e
}

// ApplyConfirmed reconciles a server-confirmed pair into the transcript:
// every pending placeholder is removed, then the pair is appended in order.
// Applying the same pair again is a no-op, so redelivery over the push
// transport cannot duplicate entries.
func (t *Transcript) ApplyConfirmed(userMsg, aiMsg domain.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, dup := t.seen[userMsg.ID]; dup {
		return
	}

	kept := t.entries[:0]
	for _, e := range t.entries {
		if e.Ref.Pending() {
			continue
		}
		kept = append(kept, e)
	}
	t.entries = kept

	t.entries = append(t.entries, confirmedEntry(userMsg), confirmedEntry(aiMsg))
	t.seen[userMsg.ID] = struct{}{}
	t.seen[aiMsg.ID] = struct{}{}
}

// MarkPendingFailed tags the placeholder with the given local ID as failed.
// The entry is kept in place rather than silently dropped. It reports whether
// a matching placeholder was found.
func (t *Transcript) MarkPendingFailed(localID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.entries {
		if id, ok := t.entries[i].Ref.LocalID(); ok && id == localID {
			t.entries[i].Failed = true
			return true
		}
	}
	return false
}

// Entries returns a copy of the transcript in display order.
func (t *Transcript) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries, placeholders included.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func confirmedEntry(m domain.Message) Entry {
	return Entry{
		Ref:       ConfirmedRef(m.ID),
		Role:      m.Role,
		Content:   m.Content,
		Rating:    m.Rating,
		CreatedAt: m.CreatedAt,
	}
}
