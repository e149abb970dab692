package rfid

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nowstock/nowstock-api/internal/application/movement"
	"github.com/nowstock/nowstock-api/pkg/config"
	"github.com/nowstock/nowstock-api/pkg/logger"
)

// ScanEngine es lo que el adaptador necesita del motor: una lectura por evento.
type ScanEngine interface {
	RecordScan(ctx context.Context, tenantID, rfidTag, actorID string) (*movement.Outcome, error)
}

var _ ScanEngine = (*movement.Engine)(nil)

// Listener acepta conexiones TCP de lectores RFID puenteados a red y traduce
// cada línea (una etiqueta por línea) en una llamada al motor. El driver
// serial físico vive fuera; aquí solo llega el stream de etiquetas. La
// identidad (empresa y usuario operador del scanner) viene de configuración.
// El debounce de relecturas de la misma etiqueta es responsabilidad de este
// adaptador, no del motor.
type Listener struct {
	cfg    config.ScannerConfig
	engine ScanEngine
	log    *logger.Logger
	now    func() time.Time

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

// NewListener construye el adaptador.
func NewListener(cfg config.ScannerConfig, engine ScanEngine, log *logger.Logger) *Listener {
	return &Listener{
		cfg:      cfg,
		engine:   engine,
		log:      log,
		now:      time.Now,
		lastSeen: make(map[string]time.Time),
	}
}

// Serve escucha en la dirección configurada hasta que ctx se cancele.
// Cada conexión de lector se atiende en su propia goroutine.
func (l *Listener) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", l.cfg.Addr)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	l.log.Info().Str("addr", l.cfg.Addr).Str("operator_id", l.cfg.OperatorID).Msg("listener RFID escuchando")

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			l.log.Warn().Err(err).Msg("accept de lector RFID falló")
			continue
		}
		go l.handleConn(ctx, conn)
	}
}

func (l *Listener) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	// Un id por sesión de lector para correlacionar las lecturas en los logs
	session := uuid.New().String()
	log := l.log.With().Str("session", session).Str("remote", conn.RemoteAddr().String()).Logger()
	log.Info().Msg("lector RFID conectado")

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		tag := strings.TrimSpace(scanner.Text())
		if tag == "" {
			continue
		}
		if l.debounced(tag) {
			log.Debug().Str("rfid_tag", tag).Msg("relectura descartada por debounce")
			continue
		}
		l.handleTag(ctx, log, tag)
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		log.Warn().Err(err).Msg("conexión de lector RFID cerrada con error")
	}
}

// handleTag procesa una etiqueta ya debounced.
func (l *Listener) handleTag(ctx context.Context, log zerolog.Logger, tag string) {
	out, err := l.engine.RecordScan(ctx, l.cfg.TenantID, tag, l.cfg.OperatorID)
	if err != nil {
		log.Warn().Err(err).Str("rfid_tag", tag).Msg("lectura RFID rechazada")
		return
	}
	log.Info().
		Str("rfid_tag", tag).
		Str("product", out.ProductName).
		Str("kind", out.Kind).
		Int64("new_quantity", out.NewQuantity).
		Msg("lectura RFID registrada")
}

// debounced indica si la etiqueta se leyó hace menos de la ventana configurada
// y actualiza el registro. Con ventana cero no se descarta nada.
func (l *Listener) debounced(tag string) bool {
	window := l.cfg.Debounce()
	if window <= 0 {
		return false
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if last, ok := l.lastSeen[tag]; ok && now.Sub(last) < window {
		return true
	}
	l.lastSeen[tag] = now
	return false
}
