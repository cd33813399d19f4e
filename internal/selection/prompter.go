package selection

// PickResult is the outcome of one menu prompt. Input carries free text
// the user typed to jump straight to a "create new" option.
type PickResult struct {
	Index     int
	Input     string
	Cancelled bool
}

// Prompter renders the interactive menus. The reconciler composes the
// option lists (including pseudo-entries like "[Create new task]"); how
// they are drawn is up to the implementation.
type Prompter interface {
	// Pick presents options under a title, highlighting current when it
	// appears in the list.
	Pick(title string, options []string, current string) (PickResult, error)
	// Input asks for one line of free text. The bool is false when the
	// user cancelled.
	Input(prompt string) (string, bool, error)
	// Confirm asks a yes/no question, defaulting to no.
	Confirm(prompt string) (bool, error)
}
