package http

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/vovakirdan/translachat-server/internal/core"
	"github.com/vovakirdan/translachat-server/internal/proto"
)

// inboundToCommand maps a client frame to a core command. A protocol error is answered to the
// client; a plain error means the frame is dropped silently.
func inboundToCommand(client *core.Client, inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoinRoom:
		var join proto.JoinRoomData
		if err := proto.DecodeData(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if client.Identity == nil && strings.TrimSpace(join.UserID) == "" {
			return nil, nil, fmt.Errorf("%w: userId is required", proto.ErrInvalidPayload)
		}
		name := join.DisplayName
		if name == "" {
			name = join.Name
		}
		return &core.Command{
			Kind:              core.CommandJoinRoom,
			Room:              join.RoomID,
			UserID:            join.UserID,
			DisplayName:       name,
			PreferredLanguage: join.PreferredLanguage,
		}, nil, nil
	case proto.InboundTypeSendMessage:
		var msg proto.SendMessageData
		if err := proto.DecodeData(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind: core.CommandSendRoomMessage,
			Room: msg.RoomID,
			Text: msg.OriginalText,
		}, nil, nil
	case proto.InboundTypeTyping, proto.InboundTypeStopTyping:
		var typing proto.TypingData
		if err := proto.DecodeData(inbound.Data, &typing); err != nil {
			return nil, nil, err
		}
		kind := core.CommandTypingStart
		if inbound.Type == proto.InboundTypeStopTyping {
			kind = core.CommandTypingStop
		}
		return &core.Command{Kind: kind, Room: typing.RoomID}, nil, nil
	default:
		return nil, &proto.Error{Code: core.ErrCodeInvalidMessage, Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	out := proto.Outbound{Type: proto.OutboundTypeEvent, Event: event.Kind.String()}

	switch event.Kind {
	case core.EventRoomJoined:
		out.Data = proto.EventRoomJoined{
			Success: true,
			RoomID:  event.Room,
			Members: lo.Map(event.Members, func(m core.Member, _ int) proto.Member {
				return proto.Member{UserID: m.UserID, DisplayName: m.DisplayName}
			}),
		}
	case core.EventMemberList:
		online := event.Online
		if online == nil {
			online = []string{}
		}
		out.Data = proto.EventMemberList{RoomID: event.Room, OnlineUserIDs: online}
	case core.EventNotification:
		out.Data = proto.EventNotification{RoomID: event.Room, Message: event.Notice}
	case core.EventNewMessage:
		if event.Message == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "empty message"}}
		}
		env := event.Message
		out.Data = proto.EventNewMessage{
			ID:               env.ID,
			RoomID:           env.RoomID,
			SenderID:         env.SenderID,
			SenderName:       env.SenderName,
			SenderLanguage:   env.SenderLanguage,
			OriginalText:     env.OriginalText,
			TranslatedText:   env.TranslatedText,
			DetectedLanguage: env.DetectedLanguage,
			Timestamp:        env.Timestamp,
		}
	case core.EventUserTyping:
		out.Data = proto.EventUserTyping{RoomID: event.Room, UserID: event.User, DisplayName: event.DisplayName}
	case core.EventUserStoppedTyping:
		out.Data = proto.EventUserStoppedTyping{RoomID: event.Room, UserID: event.User}
	case core.EventError:
		out.Type = proto.OutboundTypeError
		if event.Error == nil {
			out.Error = &proto.Error{Code: "unknown", Msg: "unknown error"}
			out.Data = proto.EventError{Message: "unknown error"}
			break
		}
		out.Error = &proto.Error{Code: event.Error.Code, Msg: event.Error.Message}
		out.Data = proto.EventError{Message: event.Error.Message}
	}
	return out
}
