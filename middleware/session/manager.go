package session

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"pos-gateway/middleware/session/application"
	"pos-gateway/middleware/session/domain"

	"golang.org/x/time/rate"
)

const DefaultCookieName = "pos_session"

type Options struct {
	Codec      domain.Codec
	CookieName string
	// LegacyCookieNames são cookies de esquemas antigos apagados no Clear.
	LegacyCookieNames []string
	TTL               time.Duration
	// Secure liga o flag Secure (só em produção).
	Secure bool
	Domain string
	Logger *slog.Logger
	Now    func() time.Time
}

type Manager struct {
	opts Options
	svc  application.Service
	log  *slog.Logger
	// diag limita os logs de cookie inválido: lixo em massa não pode inundar o log.
	diag *rate.Sometimes
}

func NewManager(opts Options) (*Manager, error) {
	if opts.Codec == nil {
		return nil, errors.New("session: codec is required")
	}
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.TTL <= 0 {
		opts.TTL = application.DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Manager{
		opts: opts,
		svc:  application.Service{Codec: opts.Codec, TTL: opts.TTL, Now: opts.Now},
		log:  opts.Logger.With(slog.String("component", "session")),
		diag: &rate.Sometimes{First: 10, Interval: time.Minute},
	}, nil
}

func (m *Manager) CookieName() string { return m.opts.CookieName }

// Create emite uma sessão nova a partir de claims já autenticados e grava o cookie.
// Só falha com claims inválidos (papel fora do conjunto, sem usuário) ou
// erro do codec: ambos são defeito de integração, não condição de runtime.
func (m *Manager) Create(w http.ResponseWriter, c domain.Claims) (domain.Record, error) {
	rec, value, err := m.svc.Issue(c)
	if err != nil {
		return domain.Record{}, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    value,
		Path:     "/",
		Domain:   m.opts.Domain,
		MaxAge:   int(m.opts.TTL / time.Second),
		Secure:   m.opts.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return rec, nil
}

// Read devolve a sessão da requisição, se houver uma válida.
func (m *Manager) Read(r *http.Request) (domain.Record, bool) {
	ck, err := r.Cookie(m.opts.CookieName)
	if err != nil || ck.Value == "" {
		return domain.Record{}, false
	}

	rec, err := m.svc.Validate(ck.Value)
	if err != nil {
		m.diagnose(r, err)
		return domain.Record{}, false
	}
	return rec, true
}

func (m *Manager) diagnose(r *http.Request, err error) {
	m.diag.Do(func() {
		msg := "invalid session cookie"
		if errors.Is(err, domain.ErrExpired) {
			msg = "expired session cookie"
		}
		m.log.DebugContext(r.Context(), msg,
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	})
}

// IsValid é Read sem o registro.
func (m *Manager) IsValid(r *http.Request) bool {
	_, ok := m.Read(r)
	return ok
}

// Clear expira o cookie de sessão e os legados. Idempotente.
func (m *Manager) Clear(w http.ResponseWriter) {
	names := append([]string{m.opts.CookieName}, m.opts.LegacyCookieNames...)
	for _, name := range names {
		if name == "" {
			continue
		}
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   m.opts.Domain,
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			Secure:   m.opts.Secure,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// Renew emite um registro novo com os mesmos claims da sessão corrente.
// O antigo continua válido até expirar; não há revogação.
func (m *Manager) Renew(w http.ResponseWriter, r *http.Request) (domain.Record, error) {
	rec, ok := m.Read(r)
	if !ok {
		return domain.Record{}, domain.ErrNoSession
	}
	return m.Create(w, rec.Claims())
}
