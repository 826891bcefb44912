// Command notesync is a terminal front end for the NoteManager service:
// it signs in against the remote auth API, keeps the note collection in
// sync through the optimistic local engine, and prints filtered views.
package main

func main() {
	Execute()
}
