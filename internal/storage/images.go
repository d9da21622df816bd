package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"Blog_Community/internal/pkg"

	pantry "github.com/dalemusser/waffle/pantry/storage"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// ErrNotImage 上传的文件不是可解码的图片
var ErrNotImage = errors.New("storage: not an image")

const maxStemLen = 100

// Images 帖子图片存储，数据库里只存相对路径
type Images struct {
	store pantry.Store
	now   func() time.Time
}

func NewImages(store pantry.Store) *Images {
	return &Images{store: store, now: time.Now}
}

// NewLocalImages 本地磁盘后端，basePath 同时是 /media 的静态目录
func NewLocalImages(basePath string) (*Images, error) {
	store, err := pantry.NewLocal(pantry.LocalConfig{BasePath: basePath})
	if err != nil {
		return nil, err
	}
	return NewImages(store), nil
}

// Save 按内容识别图片类型后保存到 dir 下，扩展名以识别结果为准
func (s *Images) Save(ctx context.Context, file *multipart.FileHeader, dir string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	mt, err := sniffImage(src)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d_%s%s", s.now().UnixNano(), sanitizeStem(file.Filename), mt.Extension())
	rel := path.Join(dir, name)
	if err = s.store.Put(ctx, rel, src, &pantry.PutOptions{ContentType: mt.String()}); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}

	pkg.Logger.Info("image stored", zap.String("path", rel), zap.String("type", mt.String()))
	return rel, nil
}

// Delete 删除图片，已经不存在时视为成功
func (s *Images) Delete(ctx context.Context, rel string) error {
	if rel == "" {
		return nil
	}
	err := s.store.Delete(ctx, rel)
	if errors.Is(err, pantry.ErrNotFound) {
		return nil
	}
	return err
}

// sniffImage 只接受能解出尺寸的 image/* 内容，返回前把读位置拨回开头
func sniffImage(src io.ReadSeeker) (*mimetype.MIME, error) {
	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, ErrNotImage
	}
	if _, err = src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if _, _, err = image.DecodeConfig(src); err != nil {
		return nil, ErrNotImage
	}
	if _, err = src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return mt, nil
}

// sanitizeStem 去掉目录和扩展名，只保留字母数字、- 和 _
func sanitizeStem(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if len(name) > maxStemLen {
		name = name[:maxStemLen]
	}
	if strings.Trim(name, "_") == "" {
		return "upload"
	}
	return name
}
