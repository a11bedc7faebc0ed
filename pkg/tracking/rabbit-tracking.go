package tracking

import (
	"log"
	"net/http"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/minchang/zipscout/pkg/messaging"
	"github.com/minchang/zipscout/pkg/types"
)

type RabbitTracking struct {
	country    string
	connection *amqp.Connection
}

const trackingTopic = "tracking"

func NewRabbitTracking(url, country string) (*RabbitTracking, error) {
	ret := RabbitTracking{
		connection: nil,
		country:    country,
	}
	err := ret.connect(url)
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

func (t *RabbitTracking) connect(url string) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return err
	}
	t.connection = conn
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	return messaging.DefineTopic(ch, "global", trackingTopic)
}

func (t *RabbitTracking) Close() error {
	return t.connection.Close()
}

func (t *RabbitTracking) send(data any) error {
	return messaging.SendChange(t.connection, "global", trackingTopic, data)
}

type BaseEvent struct {
	SessionId int    `json:"session_id"`
	Country   string `json:"country,omitempty"`
	Event     uint16 `json:"event"`
}

type Session struct {
	*BaseEvent
	UserAgent    string `json:"user_agent,omitempty"`
	Ip           string `json:"ip,omitempty"`
	Language     string `json:"language,omitempty"`
	PragmaHeader string `json:"pragma,omitempty"`
}

func (rt *RabbitTracking) TrackSession(sessionId int, r *http.Request) {
	ip := r.Header.Get("X-Real-Ip")
	if ip == "" {
		ip = r.Header.Get("X-Forwarded-For")
	}
	if ip == "" {
		ip = r.RemoteAddr
	}

	err := rt.send(Session{
		BaseEvent:    &BaseEvent{Event: 0, SessionId: sessionId, Country: rt.country},
		Language:     r.Header.Get("Accept-Language"),
		UserAgent:    r.UserAgent(),
		Ip:           ip,
		PragmaHeader: r.Header.Get("Pragma"),
	})
	if err != nil {
		log.Println("Error sending session event: ", err)
	}
}

type SearchEventData struct {
	*BaseEvent
	Dataset         types.DatasetId `json:"dataset"`
	Filters         types.Snapshot  `json:"filters"`
	NumberOfResults int             `json:"noi"`
	Page            int             `json:"page"`
	Referer         string          `json:"referer"`
}

func (rt *RabbitTracking) TrackSearch(sessionId int, dataset types.DatasetId, snapshot types.Snapshot, results int, r *http.Request) {
	err := rt.send(&SearchEventData{
		BaseEvent:       &BaseEvent{Event: 1, SessionId: sessionId, Country: rt.country},
		Dataset:         dataset,
		Filters:         snapshot,
		NumberOfResults: results,
		Page:            snapshot.Page,
		Referer:         r.Header.Get("Referer"),
	})
	if err != nil {
		log.Println("Error sending search event: ", err)
	}
}

type ClickEvent struct {
	*BaseEvent
	Item     string  `json:"item"`
	Position float32 `json:"position"`
}

func (rt *RabbitTracking) TrackClick(sessionId int, itemId string, position float32) error {
	return rt.send(&ClickEvent{
		BaseEvent: &BaseEvent{Event: 2, SessionId: sessionId, Country: rt.country},
		Item:      itemId,
		Position:  position,
	})
}

type FavoriteEvent struct {
	*BaseEvent
	Item  string `json:"item"`
	Added bool   `json:"added"`
}

func (rt *RabbitTracking) TrackFavorite(sessionId int, itemId string, added bool) error {
	return rt.send(&FavoriteEvent{
		BaseEvent: &BaseEvent{Event: 3, SessionId: sessionId, Country: rt.country},
		Item:      itemId,
		Added:     added,
	})
}

type PresetEvent struct {
	*BaseEvent
	Preset string `json:"preset"`
}

func (rt *RabbitTracking) TrackPresetApplied(sessionId int, presetId string) error {
	return rt.send(&PresetEvent{
		BaseEvent: &BaseEvent{Event: 4, SessionId: sessionId, Country: rt.country},
		Preset:    presetId,
	})
}
