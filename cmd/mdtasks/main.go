// Command mdtasks browses and edits Markdown checkbox tasks.
package main

func main() {
	Execute()
}
