package router

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/Payphone-Digital/authflow/internal/model"
	"github.com/Payphone-Digital/authflow/pkg/mail"
	"gorm.io/gorm"
)

// In-memory stand-ins for the gorm repositories.

type memUsers struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]model.User
}

func newMemUsers() *memUsers {
	return &memUsers{rows: map[uint]model.User{}}
}

func (m *memUsers) GetByID(_ context.Context, id uint) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUsers) ExistsByEmail(_ context.Context, email string, excludeID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) ExistsByCIN(_ context.Context, cin string, excludeID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.CIN != nil && *u.CIN == cin && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.rows[user.ID] = *user
	return nil
}

func (m *memUsers) UpdateFields(_ context.Context, id uint, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		s, _ := v.(string)
		switch k {
		case "name":
			u.Name = s
		case "prenom":
			u.Prenom = s
		case "email":
			u.Email = s
		case "phone":
			u.Phone = s
		case "company":
			u.Company = s
		}
	}
	m.rows[id] = u
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id uint, hashed string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Password = hashed
	m.rows[id] = u
	return nil
}

func (m *memUsers) MarkEmailVerified(_ context.Context, id uint, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok || u.EmailVerifiedAt != nil {
		return false, nil
	}
	u.EmailVerifiedAt = &at
	m.rows[id] = u
	return true, nil
}

func (m *memUsers) UpdateLastLogin(_ context.Context, id uint, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.rows[id]; ok {
		u.LastLogin = &at
		m.rows[id] = u
	}
	return nil
}

func (m *memUsers) setActive(id uint, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.rows[id]
	u.IsActive = active
	m.rows[id] = u
}

type memRefreshTokens struct {
	mu   sync.Mutex
	rows map[string]model.RefreshToken
}

func newMemRefreshTokens() *memRefreshTokens {
	return &memRefreshTokens{rows: map[string]model.RefreshToken{}}
}

func (m *memRefreshTokens) Create(_ context.Context, t *model.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[t.TokenHash] = *t
	return nil
}

func (m *memRefreshTokens) Consume(_ context.Context, hash string) (*model.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[hash]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	delete(m.rows, hash)
	return &row, nil
}

func (m *memRefreshTokens) DeleteByHash(_ context.Context, hash string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[hash]; !ok {
		return 0, nil
	}
	delete(m.rows, hash)
	return 1, nil
}

func (m *memRefreshTokens) DeleteByUser(_ context.Context, userID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for h, row := range m.rows {
		if row.UserID == userID {
			delete(m.rows, h)
			n++
		}
	}
	return n, nil
}

func (m *memRefreshTokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for h, row := range m.rows {
		if row.Expired(now) {
			delete(m.rows, h)
			n++
		}
	}
	return n, nil
}

func (m *memRefreshTokens) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memResets struct {
	mu    sync.Mutex
	rows  map[string]model.PasswordResetToken
	users *memUsers
}

func newMemResets(users *memUsers) *memResets {
	return &memResets{rows: map[string]model.PasswordResetToken{}, users: users}
}

func (m *memResets) Upsert(_ context.Context, email, hashed string, createdAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[email] = model.PasswordResetToken{Email: email, Token: hashed, CreatedAt: createdAt}
	return nil
}

func (m *memResets) GetByEmail(_ context.Context, email string) (*model.PasswordResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (m *memResets) ListCreatedAfter(_ context.Context, since time.Time) ([]model.PasswordResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.PasswordResetToken
	for _, row := range m.rows {
		if row.CreatedAt.After(since) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memResets) Redeem(ctx context.Context, email, hashed string, userID uint, password string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[email]
	if !ok || row.Token != hashed {
		return false, nil
	}
	if err := m.users.UpdatePassword(ctx, userID, password); err != nil {
		return false, err
	}
	delete(m.rows, email)
	return true, nil
}

func (m *memResets) DeleteCreatedBefore(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for email, row := range m.rows {
		if !row.CreatedAt.After(before) {
			delete(m.rows, email)
			n++
		}
	}
	return n, nil
}

// outbox captures rendered mail in place of a relay.
type outbox struct {
	mu   sync.Mutex
	msgs []mail.Message
}

func (o *outbox) Send(_ context.Context, msg mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, msg)
	return nil
}

var linkPattern = regexp.MustCompile(`https?://[^\s"<>]+`)

// lastLink returns the first URL in the text part of the newest mail to.
func (o *outbox) lastLink(to string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.msgs) - 1; i >= 0; i-- {
		if o.msgs[i].To == to {
			return linkPattern.FindString(o.msgs[i].Text)
		}
	}
	return ""
}

func (o *outbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.msgs)
}
