// mdchapter parses markdown into a chapter tree from the command line.
//
// Usage:
//
//	# Print the chapter tree of a file as JSON
//	mdchapter parse README.md
//
//	# Read stdin and print an indented outline
//	cat notes.md | mdchapter parse --format outline
//
//	# Split a document into breadcrumbed chunks
//	mdchapter chunk guide.pdf --size 800
//
//	# Re-print the outline whenever a file is saved
//	mdchapter watch draft.md
package main

func main() {
	Execute()
}
