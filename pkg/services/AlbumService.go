package services

import (
	"context"
	"fmt"
	"time"

	"github.com/adampresley/lightboxpreload/pkg/models"
	"github.com/rfberaldo/sqlz"
)

type AlbumServicer interface {
	GetAlbum(albumID uint) (*models.Album, error)
	GetAlbumList() ([]*models.Album, error)
}

type AlbumServiceConfig struct {
	DB *sqlz.DB
}

type AlbumService struct {
	db *sqlz.DB
}

func NewAlbumService(config AlbumServiceConfig) AlbumService {
	return AlbumService{
		db: config.DB,
	}
}

func (s AlbumService) GetAlbum(albumID uint) (*models.Album, error) {
	var (
		err error
	)

	result := &models.Album{}

	sql := `
SELECT
   a.id
   , a.created_at
   , a.updated_at
   , a.deleted_at
   , a.name
   , a."path"
FROM albums AS a
WHERE 1=1
   AND a.deleted_at IS NULL
   AND a.id=?
   `

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, result, sql, albumID); err != nil {
		if sqlz.IsNotFound(err) {
			return result, fmt.Errorf("%w: %d", models.ErrAlbumNotFound, albumID)
		}

		return result, fmt.Errorf("error querying for album %d: %w", albumID, err)
	}

	return result, nil
}

func (s AlbumService) GetAlbumList() ([]*models.Album, error) {
	var (
		err error
	)

	result := []*models.Album{}

	sql := `
SELECT
   a.id
   , a.created_at
   , a.updated_at
   , a.deleted_at
   , a.name
   , a."path"
FROM albums AS a
WHERE 1=1
   AND a.deleted_at IS NULL
ORDER BY a.name
   `

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &result, sql); err != nil {
		if sqlz.IsNotFound(err) {
			return result, nil
		}

		return result, fmt.Errorf("error querying for albums: %w", err)
	}

	return result, nil
}
