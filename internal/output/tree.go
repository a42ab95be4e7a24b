package output

import (
	"strings"

	"github.com/temirov/ctxdoc/internal/types"
)

// RenderTree draws the project tree as a connector diagram. The first line is
// the project name followed by a slash; directories carry a trailing slash and
// the last child at each level uses the corner connector.
func RenderTree(tree *types.ProjectTree) string {
	if tree == nil || tree.Root == nil {
		return ""
	}
	var builder strings.Builder
	builder.WriteString(tree.ProjectName + treeDirectorySuffix + "\n")
	renderTreeChildren(&builder, tree.Root.Children, "")
	return strings.TrimSuffix(builder.String(), "\n")
}

func renderTreeChildren(builder *strings.Builder, children []*types.PathEntry, prefix string) {
	for index, child := range children {
		isLast := index == len(children)-1
		linePrefix, childPrefix := treeNodeLinePrefix(prefix, isLast)
		builder.WriteString(linePrefix + child.Name)
		if child.IsDirectory {
			builder.WriteString(treeDirectorySuffix)
		}
		builder.WriteString("\n")
		if child.IsDirectory {
			renderTreeChildren(builder, child.Children, childPrefix)
		}
	}
}

func treeNodeLinePrefix(prefix string, isLast bool) (string, string) {
	if isLast {
		return prefix + treeLastConnector, prefix + treeLastPadding
	}
	return prefix + treeBranchConnector, prefix + treeBranchPadding
}
