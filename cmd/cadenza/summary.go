package main

import (
	"fmt"
	"io"

	"github.com/samcharles93/cadenza/internal/state"
)

// describeState prints one line per state key, sorted.
func describeState(w io.Writer, st state.State) {
	for _, key := range st.Keys() {
		_, _ = fmt.Fprintf(w, "%-24s %s\n", key, st[key])
	}
}
