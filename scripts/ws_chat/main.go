// Command ws_chat is an interactive terminal client for manual testing:
// it joins a room, prints everything the server broadcasts, and forwards
// stdin lines as messages (or slash commands).
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

	"github.com/parlorchat/parlor-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "display name")
	room := flag.String("room", "general-1", "room to join")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(msgType string, data any) {
		payload, marshalErr := json.Marshal(data)
		if marshalErr != nil {
			log.Printf("marshal %s: %v", msgType, marshalErr)
			return
		}
		if writeErr := wsjson.Write(ctx, conn, proto.Inbound{Type: msgType, Data: payload}); writeErr != nil {
			cancel()
			log.Printf("send: %v", writeErr)
		}
	}

	send(proto.InboundTypeJoin, proto.JoinData{UserName: *user, RoomID: *room})

	go func() {
		for {
			var outbound proto.Outbound
			if readErr := wsjson.Read(ctx, conn, &outbound); readErr != nil {
				if !errors.Is(readErr, context.Canceled) {
					log.Printf("read: %v", readErr)
				}
				cancel()
				return
			}
			printOutbound(outbound)
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			send(proto.InboundTypeCommand, proto.CommandData{RoomID: *room, Input: line})
			continue
		}
		send(proto.InboundTypeMessage, proto.MessageData{UserName: *user, RoomID: *room, Message: line})
	}

	return scanner.Err()
}

func printOutbound(outbound proto.Outbound) {
	if outbound.Error != nil {
		fmt.Printf("! %s: %s\n", outbound.Error.Code, outbound.Error.Msg)
		return
	}
	data, err := json.Marshal(outbound.Data)
	if err != nil {
		data = []byte("{}")
	}
	fmt.Printf("[%s] %s\n", outbound.Event, data)
}
