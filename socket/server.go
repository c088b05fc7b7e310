package socket

import (
	"log"

	socketio "github.com/googollee/go-socket.io"
)

// Hub pushes match notifications to connected clients. Clients authenticate
// at the HTTP layer and then join a room named after their uid; the match
// engine broadcasts a `newMatch` event into both users' rooms.
type Hub struct {
	Server *socketio.Server
}

// NewHub initializes the Socket.IO server and its event handlers.
func NewHub() *Hub {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(c socketio.Conn) error {
		log.Println("Socket connected:", c.ID())
		return nil
	})

	server.OnEvent("/", "join", func(c socketio.Conn, uid string) {
		if uid == "" {
			log.Println("Invalid uid in join request")
			return
		}
		c.Join(userRoom(uid))
	})

	server.OnError("/", func(c socketio.Conn, err error) {
		log.Println("Socket error:", err)
	})

	server.OnDisconnect("/", func(c socketio.Conn, reason string) {
		log.Println("Socket disconnected:", c.ID(), reason)
	})

	return &Hub{Server: server}
}

func userRoom(uid string) string {
	return "user:" + uid
}

// NotifyMatched tells both users about their fresh match.
func (h *Hub) NotifyMatched(matchID, uid1, uid2 string) {
	payload := map[string]string{"matchId": matchID}
	h.Server.BroadcastToRoom("/", userRoom(uid1), "newMatch", payload)
	h.Server.BroadcastToRoom("/", userRoom(uid2), "newMatch", payload)
}
