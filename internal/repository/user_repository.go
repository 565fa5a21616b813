package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// UserRepo provides data access to the users table.  Guests are created
// lazily the first time a chat id is seen, mirroring how the chat
// platform hands us identity.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// GetByID returns the user with the given surrogate id or ErrUserNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	const q = `SELECT id, chat_id, name, surname, created_at FROM users WHERE id = ?`
	var u model.User
	err := r.db.QueryRowContext(ctx, q, id).Scan(&u.ID, &u.ChatID, &u.Name, &u.Surname, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetOrCreate returns the user with the given chat id, creating the row
// when it does not exist yet.  When a non-empty name is supplied it is
// refreshed on the stored row so renamed accounts stay current; lookups
// that carry no identity leave the row untouched.
func (r *UserRepo) GetOrCreate(ctx context.Context, chatID int64, name, surname string) (*model.User, error) {
	const sel = `SELECT id, chat_id, name, surname, created_at FROM users WHERE chat_id = ?`
	var u model.User
	err := r.db.QueryRowContext(ctx, sel, chatID).Scan(&u.ID, &u.ChatID, &u.Name, &u.Surname, &u.CreatedAt)
	if err == nil {
		if name != "" && (u.Name != name || u.Surname != surname) {
			const upd = `UPDATE users SET name = ?, surname = ? WHERE id = ?`
			if _, err := r.db.ExecContext(ctx, upd, name, surname, u.ID); err != nil {
				return nil, err
			}
			u.Name, u.Surname = name, surname
		}
		return &u, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	const ins = `INSERT INTO users (chat_id, name, surname) VALUES (?, ?, ?)`
	result, err := r.db.ExecContext(ctx, ins, chatID, name, surname)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}
