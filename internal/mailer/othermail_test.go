package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/welldanyogia/webrana-mailsender/internal/errors"
	"github.com/welldanyogia/webrana-mailsender/internal/models"
)

func TestOtherMailList_RowsKeepTheirIndex(t *testing.T) {
	l := NewOtherMailList()
	assert.True(t, l.IsEmpty())

	first := l.AddRow()
	second := l.AddRow()
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 2, l.Size())

	require.NoError(t, l.Edit(second, "bob@x.com"))
	require.NoError(t, l.Remove(first))

	rows := l.Rows()
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Slot.IsEmpty())
	p, ok := rows[1].Slot.Person()
	require.True(t, ok)
	assert.Equal(t, models.Person{Name: "bob@x.com", Mail: "bob@x.com"}, p)
	assert.Equal(t, 2, l.Size(), "removing does not shrink the list")
}

func TestOtherMailList_OutOfRange(t *testing.T) {
	l := NewOtherMailList()
	l.AddRow()

	assert.ErrorIs(t, l.Edit(1, "x@x.com"), apperrors.ErrSlotOutOfRange)
	assert.ErrorIs(t, l.Remove(-1), apperrors.ErrSlotOutOfRange)
}

func TestOtherMailList_Validity(t *testing.T) {
	tests := []struct {
		name  string
		mails []string
		valid bool
	}{
		{"no rows", nil, true},
		{"one valid", []string{"a@x.com"}, true},
		{"blank row", []string{""}, false},
		{"display name", []string{"Alice <a@x.com>"}, false},
		{"mixed", []string{"a@x.com", "nope"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewOtherMailList()
			for _, m := range tt.mails {
				require.NoError(t, l.Edit(l.AddRow(), m))
			}
			assert.Equal(t, tt.valid, l.IsValid())
		})
	}
}

func TestOtherMailList_DropEmpty(t *testing.T) {
	l := NewOtherMailList()
	l.AddRow()
	require.NoError(t, l.Edit(l.AddRow(), "a@x.com"))
	assert.False(t, l.IsValid())

	l.DropEmpty()

	assert.True(t, l.IsValid())
	assert.Equal(t, []models.Person{{Name: "a@x.com", Mail: "a@x.com"}}, l.Export())
}

func TestOtherMailList_Clear(t *testing.T) {
	l := NewOtherMailList()
	require.NoError(t, l.Edit(l.AddRow(), "a@x.com"))

	l.Clear()

	assert.True(t, l.IsEmpty())
	assert.Zero(t, l.Size())
	assert.Empty(t, l.Rows())
}
