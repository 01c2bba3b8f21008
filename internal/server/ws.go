package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/abhisek/termdojo/internal/dojo"
	"github.com/abhisek/termdojo/internal/domain"
)

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type failurePayload struct {
	errorBody
	State dojo.State `json:"state"`
}

func eventMessage(ev dojo.Event) outboundMessage[any] {
	switch {
	case ev.Summary != nil:
		return outboundMessage[any]{Type: "summary", Payload: ev.Summary}
	case ev.Failure != nil:
		return outboundMessage[any]{Type: "failure", Payload: failurePayload{
			errorBody: errorBody{Error: domain.Message(ev.Failure), Kind: string(domain.KindOf(ev.Failure))},
			State:     ev.State,
		}}
	}
	return outboundMessage[any]{Type: "state", Payload: ev.State}
}

// handleDojoWS streams engine events to the client and accepts commands
// ("start", "draw", "reveal", "feedback", "end"). Command results arrive
// as events; only rejected commands are answered directly with "error".
func (s *Server) handleDojoWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := s.Engine.Subscribe()
	defer unsubscribe()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				select {
				case send <- eventMessage(ev):
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "state", Payload: s.Engine.State()}

	// Commands run concurrently so "end" can interrupt a slow draw.
	var commands sync.WaitGroup
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		commands.Add(1)
		go func(msg inboundMessage) {
			defer commands.Done()
			if err := s.runCommand(r.Context(), msg.Type, msg.Payload); err != nil {
				select {
				case send <- outboundMessage[any]{Type: "error", Payload: errorBody{Error: domain.Message(err), Kind: string(domain.KindOf(err))}}:
				case <-closeSignals:
				}
			}
		}(inbound)
	}

	close(closeSignals)
	commands.Wait()
	<-eventsDone
	close(send)
	<-writerDone
}
