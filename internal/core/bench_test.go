package core

import (
	"context"
	"strconv"
	"testing"
)

func benchmarkRoomBroadcast(b *testing.B, recipients int) {
	ctx := context.Background()
	hub := NewHub(nil)

	sender := NewClient("sender", nil, 0)
	_ = hub.RegisterClient(sender)
	hub.Handle(ctx, sender, &Command{Kind: CommandJoinRoom, Room: "bench", UserID: "sender"})

	clients := make([]*Client, 0, recipients)
	for i := range recipients {
		id := "c" + strconv.Itoa(i)
		c := NewClient(id, nil, 0)
		_ = hub.RegisterClient(c)
		hub.Handle(ctx, c, &Command{Kind: CommandJoinRoom, Room: "bench", UserID: id})
		clients = append(clients, c)
	}

	// Drain every queue so fanout never hits a full channel.
	done := make(chan struct{})
	defer close(done)
	for _, c := range append(clients, sender) {
		go func(cl *Client) {
			for {
				select {
				case <-cl.Events:
				case <-done:
					return
				}
			}
		}(c)
	}

	cmd := &Command{Kind: CommandSendRoomMessage, Room: "bench", Text: "payload"}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		hub.Handle(ctx, sender, cmd)
	}
}

func BenchmarkRoomBroadcast_10(b *testing.B)  { benchmarkRoomBroadcast(b, 10) }
func BenchmarkRoomBroadcast_100(b *testing.B) { benchmarkRoomBroadcast(b, 100) }
func BenchmarkRoomBroadcast_500(b *testing.B) { benchmarkRoomBroadcast(b, 500) }
