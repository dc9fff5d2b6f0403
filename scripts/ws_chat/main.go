package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/translachat-server/internal/proto"
)

// frame is an outbound server frame with the payload kept raw.
type frame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	token := flag.String("token", "", "JWT from /api/login; overrides -user and -name")
	user := flag.String("user", "cli-user", "user id for anonymous connections")
	name := flag.String("name", "CLI", "display name")
	lang := flag.String("lang", "en", "preferred language")
	room := flag.String("room", "general", "room to join")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	url := *addr
	if *token != "" {
		url += "?token=" + *token
	}
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if err := send(ctx, conn, proto.InboundTypeJoinRoom, proto.JoinRoomData{
		RoomID:            *room,
		UserID:            *user,
		DisplayName:       *name,
		PreferredLanguage: *lang,
	}); err != nil {
		return fmt.Errorf("join: %w", err)
	}

	fmt.Printf("Connected to %s in room %s\n", *addr, *room)
	fmt.Println("Type messages and press Enter to send. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn, *room)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func send(ctx context.Context, conn *websocket.Conn, typ string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", typ, err)
	}
	return wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload})
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}
		if f.Type == proto.OutboundTypeError {
			if f.Error != nil {
				fmt.Printf("! %s: %s\n", f.Error.Code, f.Error.Msg)
			}
			continue
		}
		printEvent(f)
	}
}

func printEvent(f frame) {
	switch f.Event {
	case "newMessage":
		var evt proto.EventNewMessage
		if err := json.Unmarshal(f.Data, &evt); err != nil {
			log.Printf("unmarshal newMessage: %v", err)
			return
		}
		fmt.Printf("[%s] %s (%s): %s\n", evt.Timestamp.Format("15:04:05"), evt.SenderName, evt.SenderLanguage, evt.TranslatedText)
	case "notification":
		var evt proto.EventNotification
		if err := json.Unmarshal(f.Data, &evt); err != nil {
			log.Printf("unmarshal notification: %v", err)
			return
		}
		fmt.Printf("* %s\n", evt.Message)
	case "updateMemberList":
		var evt proto.EventMemberList
		if err := json.Unmarshal(f.Data, &evt); err != nil {
			log.Printf("unmarshal updateMemberList: %v", err)
			return
		}
		fmt.Printf("* online: %s\n", strings.Join(evt.OnlineUserIDs, ", "))
	case "userTyping":
		var evt proto.EventUserTyping
		if err := json.Unmarshal(f.Data, &evt); err != nil {
			log.Printf("unmarshal userTyping: %v", err)
			return
		}
		fmt.Printf("* %s is typing...\n", evt.DisplayName)
	case "roomJoined", "userStoppedTyping":
	default:
		fmt.Printf("event=%s data=%s\n", f.Event, f.Data)
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn, room string) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			if err := send(ctx, conn, proto.InboundTypeSendMessage, proto.SendMessageData{RoomID: room, OriginalText: text}); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}
