package room

import "ctchen222/morpion/internal/notify"

// broadcast posts ev to every seated participant. Posting never blocks, so it
// is safe while the room lock is held; the mailboxes deliver afterwards.
func (r *Room) broadcast(ev notify.Event) {
	for _, p := range r.slots {
		if p == nil {
			continue
		}
		p.mailbox.Post(ev)
	}
}

// broadcastBoard sends the current board to both participants.
func (r *Room) broadcastBoard() {
	r.broadcast(notify.Event{Kind: notify.KindBoard, RoomID: r.ID, Board: r.board.String()})
}
