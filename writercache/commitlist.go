package writercache

import "github.com/riftcolumn/lineingest/storage"

// CommitList accumulates writers displaced from the active slot so their
// rows are flushed on the next commitAll. Keyed by writer name rather than
// a set: writers are already uniquely owned so a set would suffice, but
// the map costs nothing extra and dedupes if a writer is displaced twice.
type CommitList struct {
	writers map[string]storage.Writer
}

// NewCommitList returns an empty CommitList.
func NewCommitList() *CommitList {
	return &CommitList{writers: make(map[string]storage.Writer)}
}

// Add registers w for the next commitAll, keyed by its table name.
func (l *CommitList) Add(w storage.Writer) {
	l.writers[w.GetName()] = w
}

// Writers returns every writer currently pending commit.
func (l *CommitList) Writers() []storage.Writer {
	out := make([]storage.Writer, 0, len(l.writers))
	for _, w := range l.writers {
		out = append(out, w)
	}
	return out
}

// Clear empties the commit list. Writers remain cached elsewhere — only the
// "dirty since last commit" set is cleared.
func (l *CommitList) Clear() {
	l.writers = make(map[string]storage.Writer)
}

// Len reports how many writers are pending commit.
func (l *CommitList) Len() int {
	return len(l.writers)
}
