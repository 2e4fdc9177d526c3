package cli

// DefaultGraphFile is the primary persisted graph filename (SPEC_FULL.md §6).
const DefaultGraphFile = "codenav.bin"
