// Copyright 2026 The AcademyKit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"testing"
	"time"

	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academykit/academykit/internal/invite"
	"github.com/academykit/academykit/internal/scope"
)

const redeemSQL = `UPDATE invites SET used_at = \$2`

func inviteRow(id string, usedAt *time.Time, expiresAt time.Time) *pgxmock.Rows {
	aid := "11111111-1111-1111-1111-111111111111"
	return pgxmock.NewRows([]string{"id", "academy_id", "role", "fingerprint", "expires_at", "used_at", "created_by", "created_at"}).
		AddRow(id, &aid, "staff", "fp", expiresAt, usedAt, "admin-1", time.Now())
}

func TestInviteStore_Redeem_Wins(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewInviteStore(mock, scope.Global())
	now := time.Now()

	mock.ExpectExec(redeemSQL).
		WithArgs("inv-1", now, nil).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.Redeem(context.Background(), "inv-1", now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestPurpose: Validates that a redemption losing the compare-and-set
// re-reads the row and reports why it lost.
// Scope: Unit Test (pgxmock)
// Security: Single-Use Invite Enforcement
// Expected: A row already carrying used_at maps to ErrInviteUsed, an
// unredeemed row past expiry maps to ErrInviteExpired, a vanished row
// maps to ErrInviteNotFound.
// Test Case ID: PGI-01
func TestInviteStore_Redeem_LosingPaths(t *testing.T) {
	now := time.Now()
	earlier := now.Add(-time.Hour)

	cases := []struct {
		name string
		rows *pgxmock.Rows
		err  error
	}{
		{"already used", inviteRow("inv-1", &earlier, now.Add(time.Hour)), invite.ErrInviteUsed},
		{"expired", inviteRow("inv-1", nil, earlier), invite.ErrInviteExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			store := NewInviteStore(mock, scope.Global())

			mock.ExpectExec(redeemSQL).
				WithArgs("inv-1", now, nil).
				WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			mock.ExpectQuery(`FROM invites\s+WHERE id = \$1`).
				WithArgs("inv-1", nil).
				WillReturnRows(tc.rows)

			assert.ErrorIs(t, store.Redeem(context.Background(), "inv-1", now), tc.err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("vanished", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		store := NewInviteStore(mock, scope.Global())

		mock.ExpectExec(redeemSQL).
			WithArgs("inv-1", now, nil).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery(`FROM invites\s+WHERE id = \$1`).
			WithArgs("inv-1", nil).
			WillReturnError(pgx.ErrNoRows)

		assert.ErrorIs(t, store.Redeem(context.Background(), "inv-1", now), invite.ErrInviteNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// Invite ids are random UUIDs, so listing must sort on created_at, not id.
func TestInviteStore_List_OrdersByCreatedAt(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	aid := "11111111-1111-1111-1111-111111111111"
	store := NewInviteStore(mock, scope.Academy(aid))

	mock.ExpectQuery(`FROM invites\s+WHERE \(\$1::uuid IS NULL OR academy_id = \$1\)\s+ORDER BY created_at DESC\s+LIMIT \$2 OFFSET \$3`).
		WithArgs(aid, 10, 0).
		WillReturnRows(inviteRow("inv-1", nil, time.Now().Add(time.Hour)))

	invites, err := store.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, invites, 1)
	assert.Equal(t, "inv-1", invites[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestPurpose: Validates that a scoped handle cannot redeem another
// academy's invite even by id.
// Scope: Unit Test (pgxmock)
// Security: Tenant Write Isolation
// Expected: The CAS carries the scope's academy id, and a miss followed
// by a scoped re-read miss reads as not found.
// Test Case ID: PGI-02
func TestInviteStore_Redeem_ForeignInviteNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	aid := "11111111-1111-1111-1111-111111111111"
	store := NewInviteStore(mock, scope.Academy(aid))
	now := time.Now()

	mock.ExpectExec(redeemSQL).
		WithArgs("foreign-inv", now, aid).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`FROM invites\s+WHERE id = \$1`).
		WithArgs("foreign-inv", aid).
		WillReturnError(pgx.ErrNoRows)

	assert.ErrorIs(t, store.Redeem(context.Background(), "foreign-inv", now), invite.ErrInviteNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
