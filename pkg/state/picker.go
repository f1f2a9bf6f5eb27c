package state

// DirectoryPicker asks the user for a directory, starting at start. ok is
// false when the user cancelled.
type DirectoryPicker interface {
	PickDirectory(start string) (path string, ok bool, err error)
}

// Pick runs p for the current mode's directory and returns the message to
// feed back into Update.
func Pick(p DirectoryPicker, s State) (Message, error) {
	path, ok, err := p.PickDirectory(s.Dir())
	if err != nil {
		return nil, err
	}
	return DirectoryPicked{Path: path, OK: ok}, nil
}
