package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// MessageType tags websocket messages.
type MessageType string

const (
	MessageState MessageType = "state"
	MessageMove  MessageType = "move"
	MessageError MessageType = "error"
)

// Message is the websocket envelope in both directions.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// handleSocket streams state views of one match and accepts moves.
func (s *Server) handleSocket(c *websocket.Conn) {
	id := c.Params("id")

	var wmu sync.Mutex
	send := func(t MessageType, v any) error {
		payload, err := json.Marshal(v)
		if err != nil {
			return err
		}
		wmu.Lock()
		defer wmu.Unlock()
		return c.WriteJSON(Message{Type: t, Payload: payload})
	}

	m, err := s.matches.Get(id)
	if err != nil {
		_ = send(MessageError, fiber.Map{"error": err.Error()})
		return
	}

	updates, unsubscribe := m.Subscribe()
	defer unsubscribe()

	if err := send(MessageState, newStateView(id, m, m.State())); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg Message
			if err := c.ReadJSON(&msg); err != nil {
				return
			}
			if err := s.handleMessage(id, msg); err != nil {
				if err := send(MessageError, fiber.Map{"error": err.Error()}); err != nil {
					return
				}
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case st, ok := <-updates:
			if !ok {
				return
			}
			if err := send(MessageState, newStateView(id, m, st)); err != nil {
				log.Printf("websocket %s: %v", id, err)
				return
			}
		}
	}
}

func (s *Server) handleMessage(id string, msg Message) error {
	m, err := s.matches.Get(id)
	if err != nil {
		return err
	}
	switch msg.Type {
	case MessageMove:
		var req moveRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return err
		}
		return s.play(context.Background(), id, m, req.Move)
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}
