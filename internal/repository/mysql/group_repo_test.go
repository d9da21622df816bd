package mysql

import (
	"context"
	"regexp"
	"testing"

	"Blog_Community/internal/model"
	"Blog_Community/internal/pkg"
	"Blog_Community/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	return gormDB, mock
}

func TestGroupRepository_FindBySlug_SQL(t *testing.T) {
	query := regexp.QuoteMeta("SELECT * FROM `community_groups` WHERE slug = ? ORDER BY `community_groups`.`id` LIMIT ?")

	tests := []struct {
		name         string
		slug         string
		mockBehavior func(mock sqlmock.Sqlmock)
		wantTitle    string
		wantNotFound bool
	}{
		{
			name: "Found",
			slug: "tech",
			mockBehavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).
					WithArgs("tech", 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "title", "slug", "description"}).
						AddRow(3, "Tech", "tech", "all about tech"))
			},
			wantTitle: "Tech",
		},
		{
			name: "Not Found",
			slug: "ghost",
			mockBehavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).
					WithArgs("ghost", 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "title", "slug", "description"}))
			},
			wantNotFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			tt.mockBehavior(mock)
			repo := &GroupRepository{DB: db}

			g, err := repo.FindBySlug(context.Background(), tt.slug)
			if tt.wantNotFound {
				assert.ErrorIs(t, err, pkg.ErrNotFound)
			} else if assert.NoError(t, err) {
				assert.Equal(t, tt.wantTitle, g.Title)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGroupRepository_CreateDuplicate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := &GroupRepository{DB: db}
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Group{Slug: "tech", Title: "Tech"}))
	err := repo.Create(ctx, &model.Group{Slug: "tech", Title: "Other"})
	assert.ErrorIs(t, err, pkg.ErrInvalidOperation)
}

func TestGroupRepository_DeleteKeepsPosts(t *testing.T) {
	db := testutil.NewDB(t)
	repo := &GroupRepository{DB: db}
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "ann")
	g := testutil.CreateGroup(t, db, "tech")
	post := testutil.CreatePost(t, db, author, g, testutil.Epoch)

	require.NoError(t, repo.DeleteBySlug(ctx, "tech"))

	var reloaded model.Post
	require.NoError(t, db.First(&reloaded, post.ID).Error)
	assert.Nil(t, reloaded.GroupID)

	_, err := repo.FindBySlug(ctx, "tech")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteBySlug(ctx, "tech"), pkg.ErrNotFound)
}

func TestGroupRepository_List(t *testing.T) {
	db := testutil.NewDB(t)
	repo := &GroupRepository{DB: db}
	testutil.CreateGroup(t, db, "zeta")
	testutil.CreateGroup(t, db, "alpha")

	list, err := repo.List(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Slug)
}
