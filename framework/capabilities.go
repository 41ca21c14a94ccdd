package framework

// Capabilities is a list of strings describing optional features of a browser
// driver service. The meanings of the strings are defined by the driver
// service protocol.
type Capabilities []string

// Has returns true if the specified string appears in the list.
func (cs Capabilities) Has(name string) bool {
	for _, c := range cs {
		if c == name {
			return true
		}
	}
	return false
}
