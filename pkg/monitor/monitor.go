// Package monitor serves live chip state over websockets. A hub fans a
// once-per-emulated-second snapshot out to every connected client.
package monitor

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/thelolagemann/dsrtc/internal/nds"
	"github.com/thelolagemann/dsrtc/internal/scheduler"
	"github.com/thelolagemann/dsrtc/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Snapshot is one per-second state broadcast.
type Snapshot struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Weekday     uint8  `json:"weekday"`
	StatusReg1  uint8  `json:"statusReg1"`
	StatusReg2  uint8  `json:"statusReg2"`
	MinuteCount uint32 `json:"minuteCount"`
	Cycle       uint64 `json:"cycle"`
}

// Monitor owns the client set and the broadcast fan-out.
type Monitor struct {
	sys *nds.NDS

	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []byte

	log.Logger
}

// New attaches a monitor to the system. The snapshot event rides the
// emulation scheduler, so broadcasts track emulated time, not wall
// time.
func New(sys *nds.NDS, l log.Logger) *Monitor {
	m := &Monitor{
		sys:        sys,
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 8),
		Logger:     l,
	}

	sys.Scheduler.RegisterEvent(scheduler.MonitorSync, m.sync)
	sys.Scheduler.ScheduleEvent(scheduler.MonitorSync, nds.ClockSpeed)

	return m
}

// sync snapshots the chip and re-arms itself for the next emulated
// second. It runs on the emulation goroutine, so the hub is fed
// through a channel and slow consumers just drop frames.
func (m *Monitor) sync() {
	year, month, day, hour, minute, second := m.sys.RTC.GetDateTime()
	regs := m.sys.RTC.Registers()

	snap := Snapshot{
		Date:        fmt.Sprintf("%04d-%02d-%02d", year, month, day),
		Time:        fmt.Sprintf("%02d:%02d:%02d", hour, minute, second),
		Weekday:     regs.DateTime[3],
		StatusReg1:  regs.StatusReg1,
		StatusReg2:  regs.StatusReg2,
		MinuteCount: regs.MinuteCount,
		Cycle:       m.sys.Scheduler.Cycle(),
	}

	if data, err := json.Marshal(snap); err == nil {
		select {
		case m.broadcast <- data:
		default:
		}
	}

	m.sys.Scheduler.ScheduleEvent(scheduler.MonitorSync, nds.ClockSpeed)
}

func (m *Monitor) run() {
	for {
		select {
		case c := <-m.register:
			m.clients[c] = true
			m.Infof("monitor: client connected (%s)", c.conn.RemoteAddr())
		case c := <-m.unregister:
			if _, ok := m.clients[c]; ok {
				delete(m.clients, c)
				close(c.send)
				m.Infof("monitor: client disconnected (%s)", c.conn.RemoteAddr())
			}
		case data := <-m.broadcast:
			for c := range m.clients {
				select {
				case c.send <- data:
				default:
					// client can't keep up, drop it
					delete(m.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Listen starts the hub and serves websocket connections on addr until
// the server fails.
func (m *Monitor) Listen(addr string) error {
	go m.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			m.Errorf("monitor: upgrade: %v", err)
			return
		}

		c := &client{
			hub:  m,
			conn: conn,
			send: make(chan []byte, 16),
		}
		m.register <- c

		go c.writePump()
		go c.readPump()
	})

	return http.ListenAndServe(addr, mux)
}
