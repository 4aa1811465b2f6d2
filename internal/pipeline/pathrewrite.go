package pipeline

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RewriteRelativePaths resolves relative image and link paths in an HTML
// fragment against base, the URL path where the site's assets are mirrored.
// If base is empty or nothing is relative, the fragment is returned
// unchanged.
//
// Rewrites:
//   - img[src]
//   - a[href] (not anchors, not URLs)
//
// Leading ".." segments cannot climb above base.
func RewriteRelativePaths(fragment, base string) (string, error) {
	if base == "" || !strings.Contains(fragment, "<") {
		return fragment, nil
	}
	base = "/" + strings.Trim(base, "/")

	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	})
	if err != nil {
		return "", err
	}

	changed := false
	for _, n := range nodes {
		if rewriteNode(n, base) {
			changed = true
		}
	}
	if !changed {
		return fragment, nil
	}

	var buf strings.Builder
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// rewriteNode traverses the tree and reports whether any attribute changed.
func rewriteNode(n *html.Node, base string) bool {
	changed := false
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Img:
			changed = rewriteAttr(n, "src", base)
		case atom.A:
			changed = rewriteAttr(n, "href", base)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if rewriteNode(c, base) {
			changed = true
		}
	}
	return changed
}

func rewriteAttr(n *html.Node, key, base string) bool {
	for i, attr := range n.Attr {
		if attr.Key != key || !isRelativePath(attr.Val) {
			continue
		}
		u, err := url.Parse(attr.Val)
		if err != nil {
			continue
		}
		resolved := path.Join(base, path.Clean("/"+u.Path))
		if strings.HasSuffix(u.Path, "/") && resolved != "/" {
			resolved += "/"
		}
		u.Path = resolved
		n.Attr[i].Val = u.String()
		return true
	}
	return false
}

// isRelativePath returns true if the reference should be rewritten.
func isRelativePath(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "/") {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == "" && u.Path != ""
}
