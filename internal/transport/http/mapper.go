package http

import (
	"encoding/json"

	"github.com/parlorchat/parlor-server/internal/core"
	"github.com/parlorchat/parlor-server/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.RoomID == "" || join.UserName == "" {
			return nil, &proto.Error{Code: proto.ErrCodeBadRequest, Msg: "userName and roomId are required"}, nil
		}
		return &core.Command{
			Kind:   core.CommandJoinRoom,
			Room:   join.RoomID,
			UserID: join.UserID,
			Name:   join.UserName,
		}, nil, nil
	case proto.InboundTypeMessage:
		var msg proto.MessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		if msg.Message == "" {
			return nil, &proto.Error{Code: proto.ErrCodeBadRequest, Msg: "message is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandSendMessage,
			Room: msg.RoomID,
			Text: msg.Message,
		}, nil, nil
	case proto.InboundTypeCommand:
		var cmd proto.CommandData
		if err := json.Unmarshal(inbound.Data, &cmd); err != nil {
			return nil, nil, err
		}
		if cmd.Input == "" {
			return nil, &proto.Error{Code: proto.ErrCodeBadRequest, Msg: "input is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandClientInput,
			Room: cmd.RoomID,
			Text: cmd.Input,
		}, nil, nil
	case proto.InboundTypeLeave:
		return &core.Command{Kind: core.CommandLeaveRoom}, nil, nil
	default:
		return nil, &proto.Error{Code: proto.ErrCodeInvalidMessage, Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	ts := core.DisplayTime(event.Timestamp)

	switch event.Kind {
	case core.EventHistory:
		history := event.History
		if history == nil {
			history = []core.HistoryEntry{}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventHistory,
			Data:  proto.HistoryData{History: history},
		}
	case core.EventSystem:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventSystem,
			Data:  proto.SystemData{Text: event.Text, Timestamp: ts},
		}
	case core.EventRoomUsers:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventRoomUsers,
			Data:  proto.RoomUsersData{Users: event.Users},
		}
	case core.EventMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventReceive,
			Data:  proto.ReceiveData{UserName: event.From, Message: event.Text, Timestamp: ts},
		}
	case core.EventEmote:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventEmote,
			Data:  proto.EmoteData{Text: event.Text, Timestamp: ts},
		}
	case core.EventWhisper:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventWhisper,
			Data: proto.WhisperData{
				FromName:  event.From,
				ToName:    event.To,
				Message:   event.Text,
				Timestamp: ts,
				ToSelf:    event.ToSelf,
			},
		}
	case core.EventNickOk:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNickOk,
			Data:  proto.NickOkData{NewName: event.NewName},
		}
	case core.EventNickError:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNickError,
			Data:  proto.NickErrorData{Message: event.Text},
		}
	case core.EventLeftRoom:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventLeftRoom,
			Data:  proto.LeftRoomData{RoomID: event.Room},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
