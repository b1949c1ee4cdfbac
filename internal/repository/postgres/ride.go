package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ChasingCode34/trip-sync/internal/domain"
	"github.com/ChasingCode34/trip-sync/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	db *sql.DB
	q  Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{db: db, q: db}
}

// newRideRepositoryWithTx creates a ride repository scoped to a transaction.
func newRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `id, user_id, original_message, from_location, to_location, departure_time, party_size, status, matched_ride_id, created_at`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (id, user_id, original_message, from_location, to_location, departure_time, party_size, status, matched_ride_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	partySize := ride.PartySize
	if partySize < 1 {
		partySize = 1
	}

	var matchedRideID sql.NullString
	if ride.MatchedRideID != "" {
		matchedRideID = sql.NullString{String: ride.MatchedRideID, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.UserID,
		ride.OriginalMessage,
		string(ride.FromLocation),
		string(ride.ToLocation),
		ride.DepartureTime,
		partySize,
		string(ride.Status),
		matchedRideID,
		ride.CreatedAt,
	)
	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

// GetAll retrieves recent rides, newest first.
func (r *RideRepository) GetAll(ctx context.Context) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRides(rows)
}

// GetActiveForUser returns the user's most recent pending or matched ride.
func (r *RideRepository) GetActiveForUser(ctx context.Context, userID string) (*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + `
		FROM rides
		WHERE user_id = $1 AND status IN ('pending', 'matched')
		ORDER BY created_at DESC
		LIMIT 1
	`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

// SweepPast expires the user's elapsed active rides to completed.
func (r *RideRepository) SweepPast(ctx context.Context, userID string, now time.Time) (int64, error) {
	query := `
		UPDATE rides
		SET status = 'completed', matched_ride_id = NULL
		WHERE user_id = $1 AND status IN ('pending', 'matched') AND departure_time <= $2
	`

	result, err := r.q.ExecContext(ctx, query, userID, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// FindMatchCandidates returns pending rides compatible with the query,
// oldest created first so the longest-waiting rider wins.
func (r *RideRepository) FindMatchCandidates(ctx context.Context, q repository.MatchQuery) ([]*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + `
		FROM rides
		WHERE status = 'pending'
		  AND id != $1
		  AND user_id != $2
		  AND from_location = $3
		  AND to_location = $4
		  AND departure_time BETWEEN $5 AND $6
		ORDER BY created_at ASC
		LIMIT 20
	`

	rows, err := r.q.QueryContext(ctx, query,
		q.RideID,
		q.UserID,
		string(q.From),
		string(q.To),
		q.WindowStart,
		q.WindowEnd,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRides(rows)
}

// MatchPair atomically flips both rides from pending to matched and
// cross-links them. The status guard on each UPDATE acts as a
// compare-and-swap: two callers racing for the same pending ride cannot
// both claim it, the loser sees ErrRideNotPending and the transaction
// rolls back with neither ride modified.
func (r *RideRepository) MatchPair(ctx context.Context, rideID, partnerID string) error {
	return r.withTx(ctx, func(tx *RideRepository) error {
		// Claim in a stable order so two concurrent pairings cannot
		// deadlock on each other's row locks.
		first, second := rideID, partnerID
		if second < first {
			first, second = second, first
		}
		if err := tx.claimPending(ctx, first, other(first, rideID, partnerID)); err != nil {
			return err
		}
		return tx.claimPending(ctx, second, other(second, rideID, partnerID))
	})
}

// CancelWithRelease atomically cancels a ride and releases its partner (if
// any) back to pending. The partner demotion repairs the symmetric partner
// invariant broken by the cancellation.
func (r *RideRepository) CancelWithRelease(ctx context.Context, rideID, partnerID string) error {
	return r.withTx(ctx, func(tx *RideRepository) error {
		result, err := tx.q.ExecContext(ctx, `
			UPDATE rides
			SET status = 'cancelled', matched_ride_id = NULL
			WHERE id = $1 AND status IN ('pending', 'matched')
		`, rideID)
		if err != nil {
			return err
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return repository.ErrNotFound
		}

		if partnerID == "" {
			return nil
		}

		_, err = tx.q.ExecContext(ctx, `
			UPDATE rides
			SET status = 'pending', matched_ride_id = NULL
			WHERE id = $1 AND status = 'matched'
		`, partnerID)
		return err
	})
}

// claimPending is the CAS half of MatchPair for one side of the pair.
func (r *RideRepository) claimPending(ctx context.Context, rideID, partnerID string) error {
	result, err := r.q.ExecContext(ctx, `
		UPDATE rides
		SET status = 'matched', matched_ride_id = $1
		WHERE id = $2 AND status = 'pending'
	`, partnerID, rideID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrRideNotPending
	}
	return nil
}

// withTx runs fn against a transaction-scoped repository, committing on
// success and rolling back on any error.
func (r *RideRepository) withTx(ctx context.Context, fn func(tx *RideRepository) error) error {
	if r.db == nil {
		return errors.New("ride repository is transaction-scoped; nested transactions are not supported")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(newRideRepositoryWithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// other returns the partner of id within the (a, b) pair.
func other(id, a, b string) string {
	if id == a {
		return b
	}
	return a
}

func scanRide(row *sql.Row) (*domain.Ride, error) {
	var ride domain.Ride
	var from, to, status string
	var matchedRideID sql.NullString

	err := row.Scan(
		&ride.ID,
		&ride.UserID,
		&ride.OriginalMessage,
		&from,
		&to,
		&ride.DepartureTime,
		&ride.PartySize,
		&status,
		&matchedRideID,
		&ride.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	ride.FromLocation = domain.Location(from)
	ride.ToLocation = domain.Location(to)
	ride.Status = domain.RideStatus(status)
	ride.MatchedRideID = matchedRideID.String
	return &ride, nil
}

func collectRides(rows *sql.Rows) ([]*domain.Ride, error) {
	var rides []*domain.Ride
	for rows.Next() {
		var ride domain.Ride
		var from, to, status string
		var matchedRideID sql.NullString

		if err := rows.Scan(
			&ride.ID,
			&ride.UserID,
			&ride.OriginalMessage,
			&from,
			&to,
			&ride.DepartureTime,
			&ride.PartySize,
			&status,
			&matchedRideID,
			&ride.CreatedAt,
		); err != nil {
			return nil, err
		}

		ride.FromLocation = domain.Location(from)
		ride.ToLocation = domain.Location(to)
		ride.Status = domain.RideStatus(status)
		ride.MatchedRideID = matchedRideID.String
		rides = append(rides, &ride)
	}
	return rides, rows.Err()
}
