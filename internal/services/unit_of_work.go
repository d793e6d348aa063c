package services

import (
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
)

// UnitOfWork is a request-scoped transaction boundary. Callers Start it,
// thread the handle from Transaction() through every downstream write, and
// finish with exactly one Commit or Rollback. No partial commit is ever
// visible: either every write inside the unit succeeded or none did.
type UnitOfWork struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUnitOfWork creates a unit of work over the given connection.
func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Start opens the underlying database transaction.
func (u *UnitOfWork) Start() error {
	tx := u.db.Begin()
	if tx.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, tx.Error)
	}
	u.tx = tx
	return nil
}

// Transaction returns the active transaction handle. It fails if Start has
// not been called.
func (u *UnitOfWork) Transaction() (*gorm.DB, error) {
	if u.tx == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInternalServer, "unit of work not started")
	}
	return u.tx, nil
}

// Commit finalizes all writes performed in this unit of work.
func (u *UnitOfWork) Commit() error {
	tx, err := u.Transaction()
	if err != nil {
		return err
	}
	u.tx = nil
	if err := tx.Commit().Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Rollback discards all writes performed in this unit of work.
func (u *UnitOfWork) Rollback() error {
	tx, err := u.Transaction()
	if err != nil {
		return err
	}
	u.tx = nil
	if err := tx.Rollback().Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// WithUnitOfWork runs fn inside a fresh unit of work, committing on nil error
// and rolling back on error or panic. Errors from fn are returned unchanged.
func WithUnitOfWork(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	uow := NewUnitOfWork(db)
	if err := uow.Start(); err != nil {
		return err
	}

	tx, err := uow.Transaction()
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = uow.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		_ = uow.Rollback()
		return err
	}
	return uow.Commit()
}

// inUnitOfWork runs fn against the caller's transaction when one is supplied,
// joining the enclosing unit of work, and otherwise wraps fn in a unit of work
// of its own.
func inUnitOfWork(db, trx *gorm.DB, fn func(tx *gorm.DB) error) error {
	if trx != nil {
		return fn(trx)
	}
	return WithUnitOfWork(db, fn)
}

// conn picks the caller-supplied transaction handle when one is given, so a
// service call can join an enclosing unit of work, and falls back to the
// service's own connection otherwise.
func conn(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}
