package web

import (
	"github.com/totegamma/supermarkets"
)

// redirectNavigator records where the views asked to go during one request.
// The handler answers with a redirect to that target.
type redirectNavigator struct {
	target string
}

func (n *redirectNavigator) GoTo(path string) {
	n.target = path
}

// GoBack leaves the editor; every editor is opened from the list.
func (n *redirectNavigator) GoBack() {
	n.target = supermarkets.CollectionPath
}

func (n *redirectNavigator) Target() (string, bool) {
	return n.target, n.target != ""
}
