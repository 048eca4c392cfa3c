package tui

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"geepr/internal/domain/pullrequest"
)

type FileTreeNode struct {
	Filename string
	Children []*FileTreeNode
	// File is set on leaves.
	File *pullrequest.FileChange
}

// FilesToTree builds a directory tree of the changed files. Directories
// with a single subdirectory are folded into one node.
func FilesToTree(files []*pullrequest.FileChange) *FileTreeNode {
	findNode := func(input []*FileTreeNode, name string) *FileTreeNode {
		for _, ftn := range input {
			if ftn.Filename == name && ftn.File == nil {
				return ftn
			}
		}
		return nil
	}

	items := make([]*pullrequest.FileChange, len(files))
	copy(items, files)
	sort.Slice(items, func(i, j int) bool {
		return items[i].Path < items[j].Path
	})

	root := &FileTreeNode{Filename: ""}

	for _, item := range items {
		currentNode := root
		parts := strings.Split(item.Path, "/")
		for i, v := range parts {
			if v == "" {
				continue
			}

			if i == len(parts)-1 {
				currentNode.Children = append(currentNode.Children, &FileTreeNode{Filename: v, File: item})
				break
			}

			child := findNode(currentNode.Children, v)
			if child == nil {
				child = &FileTreeNode{Filename: v}
				currentNode.Children = append(currentNode.Children, child)
			}

			currentNode = child
		}
	}

	var traverse func(node *FileTreeNode)
	traverse = func(node *FileTreeNode) {
		for _, child := range node.Children {
			for child.File == nil && len(child.Children) == 1 && child.Children[0].File == nil {
				child.Filename = path.Join(child.Filename, child.Children[0].Filename)
				child.Children = child.Children[0].Children
			}
			traverse(child)
		}
	}

	traverse(root)

	return root
}

type fileTreeLine struct {
	Text string
	// File is nil for directory lines.
	File *pullrequest.FileChange
}

var statusIcons = map[pullrequest.FileChangeStatus]string{
	pullrequest.FileAdded:    "A",
	pullrequest.FileModified: "M",
	pullrequest.FileRemoved:  "D",
	pullrequest.FileRenamed:  "R",
}

// fileTreeLines flattens the tree into indented lines with viewed marks.
func fileTreeLines(root *FileTreeNode, viewed pullrequest.ViewedState) []fileTreeLine {
	lines := []fileTreeLine{}

	var recurse func(node *FileTreeNode, level int)
	recurse = func(node *FileTreeNode, level int) {
		prefix := strings.Repeat("  ", level)
		for _, child := range node.Children {
			if child.File == nil {
				lines = append(lines, fileTreeLine{Text: fmt.Sprintf("%s%s/", prefix, child.Filename)})
				recurse(child, level+1)
				continue
			}

			mark := "[ ]"
			if viewed[child.File.Path] {
				mark = "[x]"
			}
			lines = append(lines, fileTreeLine{
				Text: fmt.Sprintf(
					"%s%s %s %s +%d -%d",
					prefix, mark, statusIcons[child.File.Status], child.Filename,
					child.File.Additions, child.File.Deletions,
				),
				File: child.File,
			})
		}
	}

	recurse(root, 0)

	return lines
}
