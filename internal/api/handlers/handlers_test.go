package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/audio"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/dj"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/dj/mix"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/library"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/metadata"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/models"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/storage"
)

const fridayCSV = "title,artist,tempo,key,camelot,genre\n" +
	"A,x,120,,8B,house\n" +
	"B,x,140,,8B,\n" +
	"C,x,121,,8B,\n" +
	"D,x,139,,8B,\n"

type fakeLookup map[string]metadata.Track

func (f fakeLookup) Lookup(_ context.Context, title, _ string) (metadata.Track, error) {
	t, ok := f[title]
	if !ok {
		return metadata.Track{}, metadata.ErrNotFound
	}
	return t, nil
}

type testEnv struct {
	router  *gin.Engine
	store   *library.Store
	storage *storage.Client
	setID   uint
}

// newTestEnv wires every handler against an in-memory DB holding one empty
// set called "friday".
func newTestEnv(t *testing.T, maxSongs int) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Set{}, &models.Song{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := library.New(db)
	set, err := store.CreateSet(context.Background(), "friday", "")
	if err != nil {
		t.Fatalf("CreateSet: %v", err)
	}

	deck := mix.NewDeck(store, dj.NewEngine(audio.DefaultWeights), maxSongs)
	st := storage.NewWithProvider(storage.NewLocalProvider(t.TempDir()), "imports", "exports")
	lookup := fakeLookup{
		"Known": {Title: "Known", Artist: "y", Tempo: 128, Camelot: "5A", Genre: "techno", Source: "fake"},
	}

	sets := NewSetHandler(store, deck, st)
	songs := NewSongHandler(deck, lookup, false, t.TempDir())
	tools := NewToolsHandler(deck.Engine(), lookup)
	stats := NewStatsHandler(store)

	r := gin.New()
	r.GET("/stats", stats.GetStats)
	r.GET("/sets", sets.ListSets)
	r.POST("/sets", sets.CreateSet)
	r.GET("/sets/:id", sets.GetSet)
	r.DELETE("/sets/:id", sets.DeleteSet)
	r.POST("/sets/:id/import", sets.ImportCSV)
	r.POST("/sets/:id/optimize", sets.Optimize)
	r.GET("/sets/:id/export", sets.ExportCSV)
	r.POST("/sets/:id/songs", songs.AddSong)
	r.POST("/sets/:id/songs/upload", songs.UploadSong)
	r.DELETE("/sets/:id/songs/:songId", songs.DeleteSong)
	r.POST("/distance", tools.Distance)
	r.GET("/keys/convert", tools.ConvertKey)
	r.GET("/lookup", tools.Lookup)

	return &testEnv{router: r, store: store, storage: st, setID: set.ID}
}

func (e *testEnv) do(method, url string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) json(method, url, body string) *httptest.ResponseRecorder {
	return e.do(method, url, strings.NewReader(body), "application/json")
}

func (e *testEnv) upload(url, filename, content string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", filename)
	io.WriteString(fw, content)
	mw.Close()
	return e.do(http.MethodPost, url, &buf, mw.FormDataContentType())
}

func (e *testEnv) setURL(suffix string) string {
	return "/sets/" + itoa(e.setID) + suffix
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func titles(songs []models.Song) string {
	out := make([]string, len(songs))
	for i, s := range songs {
		out[i] = s.Title
	}
	return strings.Join(out, ",")
}

func TestImportWithOptimize(t *testing.T) {
	env := newTestEnv(t, 0)

	w := env.upload(env.setURL("/import?optimize=true"), "friday.csv", fridayCSV)
	if w.Code != http.StatusOK {
		t.Fatalf("import status = %d; body %s", w.Code, w.Body.String())
	}

	var res mix.Result
	decode(t, w, &res)
	if got := titles(res.Songs); got != "A,C,D,B" {
		t.Errorf("imported order = %s; want A,C,D,B", got)
	}
	if res.CostBefore != 57 || res.CostAfter != 20 {
		t.Errorf("costs = %v -> %v; want 57 -> 20", res.CostBefore, res.CostAfter)
	}
}

func TestImportRejectsBadUploads(t *testing.T) {
	env := newTestEnv(t, 0)

	tests := []struct {
		name     string
		filename string
		content  string
		want     int
	}{
		{"not a csv", "friday.txt", fridayCSV, http.StatusBadRequest},
		{"unknown columns", "friday.csv", "foo,bar\n1,2\n", http.StatusBadRequest},
		{"header only", "friday.csv", "title,artist,tempo,key,camelot,genre\n", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := env.upload(env.setURL("/import"), tt.filename, tt.content); w.Code != tt.want {
				t.Errorf("status = %d; want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}

	if w := env.upload("/sets/999/import", "x.csv", fridayCSV); w.Code != http.StatusNotFound {
		t.Errorf("import into missing set = %d; want 404", w.Code)
	}
}

func TestOptimizeLimits(t *testing.T) {
	env := newTestEnv(t, 3)

	if w := env.json(http.MethodPost, env.setURL("/optimize"), ""); w.Code != http.StatusBadRequest {
		t.Errorf("optimize empty set = %d; want 400", w.Code)
	}

	if w := env.upload(env.setURL("/import?optimize=true"), "f.csv", fridayCSV); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("import+optimize over the cap = %d; want 422", w.Code)
	}

	// Without optimize the cap does not apply.
	if w := env.upload(env.setURL("/import"), "f.csv", fridayCSV); w.Code != http.StatusOK {
		t.Fatalf("plain import = %d; want 200", w.Code)
	}
	if w := env.json(http.MethodPost, env.setURL("/optimize"), ""); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("optimize over the cap = %d; want 422", w.Code)
	}
}

func TestAddSongPlacement(t *testing.T) {
	env := newTestEnv(t, 0)
	env.upload(env.setURL("/import?optimize=true"), "friday.csv", fridayCSV)

	// In A,C,D,B a 130 BPM song sits between C (121) and D (139) for free.
	w := env.json(http.MethodPost, env.setURL("/songs"), `{"title":"E","artist":"x","tempo":130,"camelot":"8b"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("add status = %d; body %s", w.Code, w.Body.String())
	}
	var added struct {
		Song     models.Song `json:"song"`
		Position int         `json:"position"`
	}
	decode(t, w, &added)
	if added.Position != 2 || added.Song.Camelot != "8B" {
		t.Errorf("added = %+v at %d; want 8B at 2", added.Song, added.Position)
	}

	w = env.json(http.MethodPost, env.setURL("/songs?placement=end"), `{"title":"F","artist":"x","tempo":70}`)
	decode(t, w, &added)
	if w.Code != http.StatusCreated || added.Position != 5 {
		t.Errorf("append = %d at %d; want 201 at 5", w.Code, added.Position)
	}

	songs, _ := env.store.Songs(context.Background(), env.setID)
	if got := titles(songs); got != "A,C,E,D,B,F" {
		t.Errorf("stored order = %s; want A,C,E,D,B,F", got)
	}
}

func TestAddSongValidation(t *testing.T) {
	env := newTestEnv(t, 0)

	tests := []struct {
		name string
		url  string
		body string
		want int
	}{
		{"missing artist", "/songs", `{"title":"x"}`, http.StatusBadRequest},
		{"bad camelot", "/songs", `{"title":"x","artist":"y","camelot":"13C"}`, http.StatusBadRequest},
		{"negative tempo", "/songs", `{"title":"x","artist":"y","tempo":-1}`, http.StatusBadRequest},
		{"bad placement", "/songs?placement=middle", `{"title":"x","artist":"y"}`, http.StatusBadRequest},
		{"unknown key is fine", "/songs", `{"title":"x","artist":"y"}`, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := env.json(http.MethodPost, env.setURL(tt.url), tt.body); w.Code != tt.want {
				t.Errorf("status = %d; want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}

	if w := env.json(http.MethodPost, "/sets/abc/songs", `{"title":"x","artist":"y"}`); w.Code != http.StatusBadRequest {
		t.Errorf("non-numeric set id = %d; want 400", w.Code)
	}
}

func TestAddSongWithLookup(t *testing.T) {
	env := newTestEnv(t, 0)

	w := env.json(http.MethodPost, env.setURL("/songs"), `{"title":"Known","artist":"y","lookup":true}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d; body %s", w.Code, w.Body.String())
	}
	var added struct {
		Song models.Song `json:"song"`
	}
	decode(t, w, &added)
	if added.Song.Tempo != 128 || added.Song.Camelot != "5A" || added.Song.Genre != "techno" {
		t.Errorf("song = %+v; want the looked-up tempo, key and genre", added.Song)
	}

	// Unknown songs are still added, just without metadata.
	w = env.json(http.MethodPost, env.setURL("/songs"), `{"title":"Obscure","artist":"y","lookup":true}`)
	if w.Code != http.StatusCreated {
		t.Errorf("unknown song status = %d; want 201", w.Code)
	}
}

func TestUploadSongWithoutTags(t *testing.T) {
	env := newTestEnv(t, 0)

	if w := env.upload(env.setURL("/songs/upload"), "notes.txt", "hello"); w.Code != http.StatusBadRequest {
		t.Errorf("unsupported format = %d; want 400", w.Code)
	}

	w := env.upload(env.setURL("/songs/upload"), "Deep_Dive-Extended.mp3", "not really audio")
	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d; body %s", w.Code, w.Body.String())
	}
	var added struct {
		Song models.Song `json:"song"`
	}
	decode(t, w, &added)
	if added.Song.Title != "Deep Dive Extended" || added.Song.Artist != "Unknown Artist" {
		t.Errorf("song = %+v; want title from the filename", added.Song)
	}
}

func TestDeleteSong(t *testing.T) {
	env := newTestEnv(t, 0)
	env.upload(env.setURL("/import"), "friday.csv", fridayCSV)
	songs, _ := env.store.Songs(context.Background(), env.setID)

	url := env.setURL("/songs/" + itoa(songs[1].ID))
	if w := env.do(http.MethodDelete, url, nil, ""); w.Code != http.StatusOK {
		t.Fatalf("delete = %d; want 200", w.Code)
	}
	if w := env.do(http.MethodDelete, url, nil, ""); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d; want 404", w.Code)
	}

	songs, _ = env.store.Songs(context.Background(), env.setID)
	if got := titles(songs); got != "A,C,D" {
		t.Errorf("remaining = %s; want A,C,D", got)
	}
}

func TestSetCRUD(t *testing.T) {
	env := newTestEnv(t, 0)

	if w := env.json(http.MethodPost, "/sets", `{"name":"sunday","description":"closing"}`); w.Code != http.StatusCreated {
		t.Fatalf("create = %d; body %s", w.Code, w.Body.String())
	}
	if w := env.json(http.MethodPost, "/sets", `{"name":"sunday"}`); w.Code != http.StatusConflict {
		t.Errorf("duplicate create = %d; want 409", w.Code)
	}
	if w := env.json(http.MethodPost, "/sets", `{"name":"  "}`); w.Code != http.StatusBadRequest {
		t.Errorf("blank name = %d; want 400", w.Code)
	}

	var list struct {
		Data []library.SetSummary `json:"data"`
	}
	decode(t, env.do(http.MethodGet, "/sets", nil, ""), &list)
	if len(list.Data) != 2 || list.Data[0].Name != "friday" || list.Data[1].Name != "sunday" {
		t.Errorf("list = %+v; want friday, sunday", list.Data)
	}

	env.upload(env.setURL("/import"), "friday.csv", fridayCSV)
	var got struct {
		Set  models.Set `json:"set"`
		Cost float64    `json:"cost"`
	}
	decode(t, env.do(http.MethodGet, env.setURL(""), nil, ""), &got)
	if titles(got.Set.Songs) != "A,B,C,D" || got.Cost != 57 {
		t.Errorf("get = %s cost %v; want A,B,C,D cost 57", titles(got.Set.Songs), got.Cost)
	}

	if w := env.do(http.MethodDelete, env.setURL(""), nil, ""); w.Code != http.StatusOK {
		t.Errorf("delete = %d; want 200", w.Code)
	}
	if w := env.do(http.MethodGet, env.setURL(""), nil, ""); w.Code != http.StatusNotFound {
		t.Errorf("get deleted set = %d; want 404", w.Code)
	}
}

func TestExportCSV(t *testing.T) {
	env := newTestEnv(t, 0)

	if w := env.do(http.MethodGet, env.setURL("/export"), nil, ""); w.Code != http.StatusBadRequest {
		t.Errorf("export empty set = %d; want 400", w.Code)
	}

	env.upload(env.setURL("/import?optimize=true"), "friday.csv", fridayCSV)
	w := env.do(http.MethodGet, env.setURL("/export?store=true"), nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("export = %d; body %s", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "optimized_playlist.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if lines[0] != "title,artist,tempo,key,camelot,genre" || len(lines) != 5 {
		t.Fatalf("export body = %q", w.Body.String())
	}
	if lines[1] != "A,x,120,,8B,house" || !strings.HasPrefix(lines[4], "B,") {
		t.Errorf("export rows out of order: %q", lines[1:])
	}

	key := w.Header().Get("X-Export-Key")
	if !strings.HasPrefix(key, "friday/") || !strings.HasSuffix(key, ".csv") {
		t.Fatalf("X-Export-Key = %q", key)
	}
	if ok, err := env.storage.ExportExists(key); err != nil || !ok {
		t.Errorf("stored export missing: %v, %v", ok, err)
	}
}

func TestStats(t *testing.T) {
	env := newTestEnv(t, 0)
	env.upload(env.setURL("/import"), "friday.csv", fridayCSV)
	env.json(http.MethodPost, env.setURL("/songs"), `{"title":"x","artist":"y"}`)

	var body struct {
		Stats map[string]int64 `json:"stats"`
	}
	decode(t, env.do(http.MethodGet, "/stats", nil, ""), &body)

	want := map[string]int64{"total_sets": 1, "total_songs": 5, "missing_tempo": 1, "missing_key": 1}
	for k, v := range want {
		if body.Stats[k] != v {
			t.Errorf("%s = %d; want %d", k, body.Stats[k], v)
		}
	}
}

func TestDistance(t *testing.T) {
	env := newTestEnv(t, 0)

	tests := []struct {
		name      string
		body      string
		want      float64
		wantKey   int
		wantTempo float64
	}{
		// 61 doubled is 122: 2 BPM, one wheel step.
		{"double time", `{"a":{"tempo":120,"camelot":"8B"},"b":{"tempo":61,"camelot":"9B"}}`, 6, 1, 2},
		{"unknown tempo", `{"a":{"tempo":0,"camelot":"8B"},"b":{"tempo":120,"camelot":"8B"}}`, 100, 0, 100},
		{"unknown key", `{"a":{"tempo":120},"b":{"tempo":120,"camelot":"8B"}}`, 24, 6, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.json(http.MethodPost, "/distance", tt.body)
			var got struct {
				Distance float64 `json:"distance"`
				Tempo    float64 `json:"tempo_distance"`
				Key      int     `json:"key_distance"`
			}
			decode(t, w, &got)
			if got.Distance != tt.want || got.Key != tt.wantKey || got.Tempo != tt.wantTempo {
				t.Errorf("got %+v; want distance %v key %d tempo %v", got, tt.want, tt.wantKey, tt.wantTempo)
			}
		})
	}

	if w := env.json(http.MethodPost, "/distance", `{"a":{"tempo":120}}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing b = %d; want 400", w.Code)
	}
}

func TestConvertKey(t *testing.T) {
	env := newTestEnv(t, 0)

	tests := []struct {
		query       string
		wantStatus  int
		wantKey     string
		wantCamelot string
	}{
		{"key=0&mode=1", http.StatusOK, "C major", "8B"},
		{"key=1&mode=0", http.StatusOK, "C# minor", "12A"},
		{"key=9&mode=0", http.StatusOK, "A minor", "8A"},
		{"name=F%23m", http.StatusOK, "F#m", "11A"},
		{"key=12&mode=0", http.StatusBadRequest, "", ""},
		{"key=3&mode=2", http.StatusBadRequest, "", ""},
		{"name=H", http.StatusBadRequest, "", ""},
		{"", http.StatusBadRequest, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := env.do(http.MethodGet, "/keys/convert?"+tt.query, nil, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d; want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var got map[string]string
			decode(t, w, &got)
			if got["key"] != tt.wantKey || got["camelot"] != tt.wantCamelot {
				t.Errorf("got %v; want %s / %s", got, tt.wantKey, tt.wantCamelot)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	env := newTestEnv(t, 0)

	w := env.do(http.MethodGet, "/lookup?title=Known&artist=y", nil, "")
	var track metadata.Track
	decode(t, w, &track)
	if w.Code != http.StatusOK || track.Tempo != 128 || track.Source != "fake" {
		t.Errorf("lookup = %d %+v", w.Code, track)
	}

	if w := env.do(http.MethodGet, "/lookup?title=Nope&artist=y", nil, ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown song = %d; want 404", w.Code)
	}
	if w := env.do(http.MethodGet, "/lookup?title=Known", nil, ""); w.Code != http.StatusBadRequest {
		t.Errorf("missing artist = %d; want 400", w.Code)
	}
}
