package pkg

import (
	"context"
	"strconv"
	"strings"
)

// DefaultPageSize 每页帖子数量
const DefaultPageSize = 10

// Sequence 有序序列，分页器只通过 Count/Slice 访问，数据库查询可以直接用 LIMIT/OFFSET 实现
type Sequence[T any] interface {
	Count(ctx context.Context) (int64, error)
	Slice(ctx context.Context, offset, limit int) ([]T, error)
}

// SliceSequence 内存切片实现
type SliceSequence[T any] []T

func (s SliceSequence[T]) Count(context.Context) (int64, error) {
	return int64(len(s)), nil
}

func (s SliceSequence[T]) Slice(_ context.Context, offset, limit int) ([]T, error) {
	if offset >= len(s) {
		return []T{}, nil
	}
	end := offset + limit
	if end > len(s) {
		end = len(s)
	}
	return s[offset:end], nil
}

// Page 一页数据以及分页信息
type Page[T any] struct {
	Items       []T   `json:"items"`
	Number      int   `json:"number"`
	NumPages    int   `json:"num_pages"`
	Count       int64 `json:"count"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// ResolvePageNumber 页码解析：非数字取第一页，越界（包括小于1）取最后一页
func ResolvePageNumber(raw string, numPages int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	if n < 1 || n > numPages {
		return numPages
	}
	return n
}

// NormalizePage 页码参数的规范写法，解析规则和 ResolvePageNumber 一致：
// 非数字都是第一页，小于1的都落在最后一页
func NormalizePage(raw string) string {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return "1"
	}
	if n < 1 {
		return "0"
	}
	return strconv.Itoa(n)
}

// NumPages 空序列也算一页
func NumPages(count int64, pageSize int) int {
	if count <= 0 {
		return 1
	}
	size := int64(pageSize)
	return int((count + size - 1) / size)
}

// Paginate 按页码切出一页
func Paginate[T any](ctx context.Context, seq Sequence[T], pageSize int, rawPage string) (*Page[T], error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	count, err := seq.Count(ctx)
	if err != nil {
		return nil, err
	}
	numPages := NumPages(count, pageSize)
	number := ResolvePageNumber(rawPage, numPages)

	items := []T{}
	if count > 0 {
		if items, err = seq.Slice(ctx, (number-1)*pageSize, pageSize); err != nil {
			return nil, err
		}
		if items == nil {
			items = []T{}
		}
	}
	return &Page[T]{
		Items:       items,
		Number:      number,
		NumPages:    numPages,
		Count:       count,
		HasNext:     number < numPages,
		HasPrevious: number > 1,
	}, nil
}
