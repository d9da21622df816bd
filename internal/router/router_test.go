package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"Blog_Community/internal/cache"
	"Blog_Community/internal/model"
	"Blog_Community/internal/pkg"
	"Blog_Community/internal/repository/redis"
	"Blog_Community/internal/service"
	"Blog_Community/internal/storage"
	"Blog_Community/internal/testutil"

	pantry "github.com/dalemusser/waffle/pantry/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type app struct {
	db     *gorm.DB
	tokens *redis.TokenRepository
	cache  *cache.Memory
	media  *pantry.Memory
	engine *gin.Engine
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	_, rdb := testutil.NewRedis(t)
	tokens := &redis.TokenRepository{RDB: rdb}
	pageCache := cache.NewMemory(time.Minute, nil)
	media := pantry.NewMemory(pantry.MemoryConfig{})
	follows := service.NewFollowService(db)
	emails := service.NewEmailService(db, &redis.EmailRepository{RDB: rdb}, pkg.SMTPConfig{},
		func(pkg.SMTPConfig, string, string, string) error { return nil })

	engine := InitRouter(Deps{
		Feeds:     service.NewFeedService(db, service.NewPostSelector(db, follows), follows, pkg.DefaultPageSize),
		Posts:     service.NewPostService(db, storage.NewImages(media), pageCache),
		Comments:  service.NewCommentService(db),
		Follows:   follows,
		Groups:    service.NewGroupService(db),
		Users:     service.NewUserService(db, tokens, emails),
		Emails:    emails,
		Tokens:    tokens,
		PageCache: pageCache,
	})
	return &app{db: db, tokens: tokens, cache: pageCache, media: media, engine: engine}
}

// login 直接签发 token 并写入 redis
func (a *app) login(t *testing.T, u *model.User) string {
	t.Helper()
	pair, err := pkg.GeneratePair(u.ID, u.Role)
	require.NoError(t, err)
	require.NoError(t, a.tokens.AddUserToken(context.Background(), u.ID, pair.AccessToken))
	return pair.AccessToken
}

func (a *app) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

type pageBody struct {
	Page struct {
		Items    []model.Post `json:"items"`
		Number   int          `json:"number"`
		NumPages int          `json:"num_pages"`
	} `json:"page"`
}

func decodePage(t *testing.T, w *httptest.ResponseRecorder) pageBody {
	t.Helper()
	var body pageBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestIndex_PaginatesAndCaches(t *testing.T) {
	a := newApp(t)
	ann := testutil.CreateUser(t, a.db, "ann")
	testutil.CreatePosts(t, a.db, ann, nil, 13, testutil.Epoch)

	w := a.do(httptest.NewRequest(http.MethodGet, "/api/posts?page=2", nil), "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodePage(t, w)
	assert.Equal(t, 2, body.Page.Number)
	assert.Equal(t, 2, body.Page.NumPages)
	assert.Len(t, body.Page.Items, 3)

	// 缓存期内新帖子不可见
	testutil.CreatePost(t, a.db, ann, nil, testutil.Epoch.Add(-time.Hour))
	w = a.do(httptest.NewRequest(http.MethodGet, "/api/posts?page=2", nil), "")
	assert.Len(t, decodePage(t, w).Page.Items, 3)

	require.NoError(t, a.cache.Invalidate(context.Background()))
	w = a.do(httptest.NewRequest(http.MethodGet, "/api/posts?page=2", nil), "")
	assert.Len(t, decodePage(t, w).Page.Items, 4)
}

func TestGroupFeed_NotFound(t *testing.T) {
	a := newApp(t)
	w := a.do(httptest.NewRequest(http.MethodGet, "/api/group/ghost", nil), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfile_FollowingFlag(t *testing.T) {
	a := newApp(t)
	ann := testutil.CreateUser(t, a.db, "ann")
	bob := testutil.CreateUser(t, a.db, "bob")
	testutil.CreatePost(t, a.db, bob, nil, testutil.Epoch)
	token := a.login(t, ann)

	w := a.do(httptest.NewRequest(http.MethodPost, "/api/profile/bob/follow", nil), token)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/api/profile/bob", w.Header().Get("Location"))

	w = a.do(httptest.NewRequest(http.MethodGet, "/api/profile/bob", nil), token)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Following  bool  `json:"following"`
		PostsCount int64 `json:"posts_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Following)
	assert.EqualValues(t, 1, body.PostsCount)

	w = a.do(httptest.NewRequest(http.MethodGet, "/api/follow", nil), token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodePage(t, w).Page.Items, 1)

	w = a.do(httptest.NewRequest(http.MethodPost, "/api/profile/bob/unfollow", nil), token)
	require.Equal(t, http.StatusFound, w.Code)
	w = a.do(httptest.NewRequest(http.MethodGet, "/api/follow", nil), token)
	assert.Empty(t, decodePage(t, w).Page.Items)
}

func TestFollowFeed_RedirectsAnonymous(t *testing.T) {
	a := newApp(t)
	w := a.do(httptest.NewRequest(http.MethodGet, "/api/follow?page=2", nil), "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/api/user/login?next="+url.QueryEscape("/api/follow?page=2"), w.Header().Get("Location"))
}

func TestFollow_SelfIsNoop(t *testing.T) {
	a := newApp(t)
	ann := testutil.CreateUser(t, a.db, "ann")
	token := a.login(t, ann)

	w := a.do(httptest.NewRequest(http.MethodPost, "/api/profile/ann/follow", nil), token)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/api/profile/ann", w.Header().Get("Location"))

	var n int64
	require.NoError(t, a.db.Model(&model.Follow{}).Count(&n).Error)
	assert.Zero(t, n)

	w = a.do(httptest.NewRequest(http.MethodPost, "/api/profile/ghost/follow", nil), token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostDetail_AndEditForbidden(t *testing.T) {
	a := newApp(t)
	ann := testutil.CreateUser(t, a.db, "ann")
	bob := testutil.CreateUser(t, a.db, "bob")
	post := testutil.CreatePost(t, a.db, ann, nil, testutil.Epoch)
	detail := "/api/posts/" + jsonID(post.ID)

	w := a.do(httptest.NewRequest(http.MethodGet, detail, nil), a.login(t, ann))
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		IsAuthor bool `json:"is_author"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.IsAuthor)

	w = a.do(formRequest(http.MethodPost, detail+"/edit", url.Values{"text": {"hijacked post text"}}), a.login(t, bob))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	var stored model.Post
	require.NoError(t, a.db.First(&stored, post.ID).Error)
	assert.Equal(t, post.Text, stored.Text)

	w = a.do(httptest.NewRequest(http.MethodGet, "/api/posts/9999", nil), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePost_Multipart(t *testing.T) {
	a := newApp(t)
	ann := testutil.CreateUser(t, a.db, "ann")
	tech := testutil.CreateGroup(t, a.db, "tech")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("text", "a post from the form"))
	require.NoError(t, mw.WriteField("group", jsonID(tech.ID)))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/posts", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := a.do(req, a.login(t, ann))
	require.Equal(t, http.StatusCreated, w.Code)

	w = a.do(formRequest(http.MethodPost, "/api/posts", url.Values{"text": {"short"}}), a.login(t, ann))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(formRequest(http.MethodPost, "/api/posts", url.Values{"text": {"anonymous text"}}), "")
	assert.Equal(t, http.StatusFound, w.Code)
}

func multipartPost(t *testing.T, text, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("text", text))
	part, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/posts", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCreatePost_ImageUpload(t *testing.T) {
	a := newApp(t)
	ann := testutil.CreateUser(t, a.db, "ann")
	token := a.login(t, ann)

	w := a.do(multipartPost(t, "a post with a script", "evil.html", []byte("<html><script>alert(1)</script></html>")), token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"msg":"image: upload a valid image"}`, w.Body.String())
	assert.Zero(t, a.media.Count())

	w = a.do(multipartPost(t, "a post with a picture", "cat.png", testutil.PNG(t)), token)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, a.media.Count())

	var stored model.Post
	require.NoError(t, a.db.Last(&stored).Error)
	assert.True(t, strings.HasPrefix(stored.Image, "posts/"))
	assert.True(t, strings.HasSuffix(stored.Image, "_cat.png"))
}

func TestAddComment(t *testing.T) {
	a := newApp(t)
	ann := testutil.CreateUser(t, a.db, "ann")
	post := testutil.CreatePost(t, a.db, ann, nil, testutil.Epoch)
	detail := "/api/posts/" + jsonID(post.ID)

	w := a.do(formRequest(http.MethodPost, detail+"/comment", url.Values{"text": {"great"}}), a.login(t, ann))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	var n int64
	require.NoError(t, a.db.Model(&model.Comment{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestGroups_AdminOnly(t *testing.T) {
	a := newApp(t)
	ann := testutil.CreateUser(t, a.db, "ann")
	root := testutil.CreateUser(t, a.db, "root")
	require.NoError(t, a.db.Model(root).Update("role", model.RoleAdmin).Error)
	root.Role = model.RoleAdmin

	create := func(token, slug string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/groups", strings.NewReader(`{"slug":"`+slug+`","title":"Tech"}`))
		req.Header.Set("Content-Type", "application/json")
		return a.do(req, token).Code
	}

	assert.Equal(t, http.StatusForbidden, create(a.login(t, ann), "tech"))
	assert.Equal(t, http.StatusBadRequest, create(a.login(t, root), "bad slug!"))
	assert.Equal(t, http.StatusCreated, create(a.login(t, root), "tech"))
	assert.Equal(t, http.StatusBadRequest, create(a.login(t, root), "tech"))

	w := a.do(httptest.NewRequest(http.MethodGet, "/api/group/tech", nil), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.do(httptest.NewRequest(http.MethodDelete, "/api/groups/tech", nil), a.login(t, root))
	assert.Equal(t, http.StatusOK, w.Code)
	w = a.do(httptest.NewRequest(http.MethodGet, "/api/group/tech", nil), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(httptest.NewRequest(http.MethodPost, "/api/cache/clear", nil), a.login(t, root))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAccountFlow(t *testing.T) {
	a := newApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/user/register",
		strings.NewReader(`{"username":"ann","email":"ann@example.com","password":"password123"}`))
	req.Header.Set("Content-Type", "application/json")
	require.Equal(t, http.StatusCreated, a.do(req, "").Code)

	req = httptest.NewRequest(http.MethodPost, "/api/user/login",
		strings.NewReader(`{"username":"ann","password":"password123"}`))
	req.Header.Set("Content-Type", "application/json")
	w := a.do(req, "")
	require.Equal(t, http.StatusOK, w.Code)
	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokens))
	require.NotEmpty(t, tokens.AccessToken)

	w = a.do(httptest.NewRequest(http.MethodGet, "/api/follow", nil), tokens.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.do(httptest.NewRequest(http.MethodPost, "/api/user/logout", nil), tokens.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)

	// 登出后旧 token 失效
	w = a.do(httptest.NewRequest(http.MethodGet, "/api/follow", nil), tokens.AccessToken)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	a := newApp(t)
	a.do(httptest.NewRequest(http.MethodGet, "/api/posts", nil), "")

	w := a.do(httptest.NewRequest(http.MethodGet, "/metrics", nil), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "blog_page_cache_requests_total")
}

func jsonID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
