// Package httpserver implements the GPFS/task control surface of
// spec.4.H: a single chi mux bound to 127.0.0.1:1969 whose leading path
// segment names the operation and whose query string supplies its
// arguments.
package httpserver

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/gimlids/mrgp/internal/gpfs"
	"github.com/gimlids/mrgp/internal/job"
)

// Addr is the fixed bind address mandated by spec.6.
const Addr = "127.0.0.1:1969"

// Server owns the GPFS store and the job coordinator that the control
// surface dispatches to.
type Server struct {
	FS          *gpfs.FS
	Coordinator *job.Coordinator
	Log         *logrus.Logger
}

// Handler builds the chi mux described by spec.4.H's operation table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/ls", s.handleLs)
	r.Get("/append", s.handleAppend)
	r.Get("/cat", s.handleCat)
	r.Get("/head", s.handleHead)
	r.Get("/tail", s.handleTail)
	r.Get("/task", s.handleTask)
	r.NotFound(s.handleUnknown)

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(rec, r)
		s.Log.WithFields(logrus.Fields{
			"op":     r.URL.Path,
			"status": rec.Status(),
			"dur":    time.Since(start),
		}).Info("handled request")
	})
}

func sendList(w http.ResponseWriter, title string, items []string) {
	w.Header().Set("Content-type", "text-html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "<html><head>%s</head>\n<body>\n%s", title, title)
	if len(items) > 0 {
		fmt.Fprint(w, "\n<ul>")
		for _, it := range items {
			fmt.Fprintf(w, "<li>%s</li>", it)
		}
		fmt.Fprint(w, "</ul>")
	}
	fmt.Fprint(w, "\n</body></html>\n")
}

func sendText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-type", "text-plain")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, text)
}

func sendIllegal(w http.ResponseWriter, path string) {
	sendList(w, "Error: illegal command", []string{path})
}

func (s *Server) handleLs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if dir := q.Get("dir"); dir != "" {
		sendList(w, "Files in "+dir, s.FS.ListFiles(dir))
		return
	}
	sendList(w, "View listing", s.FS.ListDirs())
}

func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dir, file, line := q.Get("dir"), q.Get("file"), q.Get("line")
	if dir == "" || file == "" || !q.Has("line") {
		sendIllegal(w, r.URL.Path)
		return
	}
	s.FS.Append(dir, file, line)
	sendList(w, "Appended to "+dir+"/"+file, []string{line})
}

func (s *Server) handleCat(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dir, file := q.Get("dir"), q.Get("file")
	if dir == "" || file == "" {
		sendIllegal(w, r.URL.Path)
		return
	}
	lines, err := s.FS.Cat(dir, file)
	if err != nil {
		sendIllegal(w, r.URL.Path)
		return
	}
	sendText(w, joinLines(lines))
}

func (s *Server) handleHead(w http.ResponseWriter, r *http.Request) {
	s.handleHeadOrTail(w, r, s.FS.Head)
}

func (s *Server) handleTail(w http.ResponseWriter, r *http.Request) {
	s.handleHeadOrTail(w, r, s.FS.Tail)
}

func (s *Server) handleHeadOrTail(w http.ResponseWriter, r *http.Request, op func(dir, file string, n int) ([]string, error)) {
	q := r.URL.Query()
	dir, file, nStr := q.Get("dir"), q.Get("file"), q.Get("n")
	if dir == "" || file == "" || nStr == "" {
		sendIllegal(w, r.URL.Path)
		return
	}
	n, err := strconv.Atoi(nStr)
	if err != nil {
		sendIllegal(w, r.URL.Path)
		return
	}
	lines, err := op(dir, file, n)
	if err != nil {
		sendIllegal(w, r.URL.Path)
		return
	}
	sendText(w, joinLines(lines))
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	opts, err := parseJobOptions(r.URL.Query())
	if err != nil {
		sendIllegal(w, r.URL.Path)
		return
	}

	start := time.Now()
	runErr := s.Coordinator.Run(opts)
	elapsed := time.Since(start)

	if runErr != nil {
		s.Log.WithError(runErr).Error("task failed")
		sendText(w, fmt.Sprintf("%+v", runErr))
		return
	}

	stat := fmt.Sprintf("Task performed in %.2f sec", elapsed.Seconds())
	s.Log.Info(stat)
	sendList(w, stat, optionSummary(r.URL.Query()))
}

func (s *Server) handleUnknown(w http.ResponseWriter, r *http.Request) {
	sendList(w, "Error: unknown command "+r.URL.Path, []string{r.URL.Path})
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}

func optionSummary(q map[string][]string) []string {
	out := make([]string, 0, len(q))
	for k, vs := range q {
		for _, v := range vs {
			out = append(out, fmt.Sprintf("%s=%s", k, v))
		}
	}
	return out
}
