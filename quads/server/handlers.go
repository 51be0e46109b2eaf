package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wbrown/janus-quads/quads"
	"github.com/wbrown/janus-quads/quads/notation"
	"github.com/wbrown/janus-quads/quads/pattern"
	"github.com/wbrown/janus-quads/quads/store"
	"github.com/wbrown/janus-quads/quads/term"
)

var (
	errBadRequest = errors.New("bad request")
	errNotFound   = errors.New("not found")
)

// QuadJSON is the wire form of a quad. Graph is empty for the default graph.
type QuadJSON struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
	Graph     string `json:"graph,omitempty"`
}

// MatchResponse is returned by GET and DELETE /v1/quads.
type MatchResponse struct {
	Pattern string     `json:"pattern"`
	Quads   []QuadJSON `json:"quads"`
	Count   int        `json:"count"`
}

// StatsResponse is returned by GET /v1/stats.
type StatsResponse struct {
	Quads        int `json:"quads"`
	DefaultGraph int `json:"default_graph"`
	NamedGraphs  int `json:"named_graphs"`
	Resources    int `json:"resources"`
	Subjects     int `json:"subjects"`
	Predicates   int `json:"predicates"`
	Objects      int `json:"objects"`
}

func toJSON(q quads.Quad[term.Term]) QuadJSON {
	out := QuadJSON{
		Subject:   q.Subject.String(),
		Predicate: q.Predicate.String(),
		Object:    q.Object.String(),
	}
	if g, ok := q.GraphLabel(); ok {
		out.Graph = g.String()
	}
	return out
}

// requestPattern reads ?pattern=[...] or, failing that, the s, p, o and g
// parameters. A missing position is a wildcard; g=default selects the
// default graph.
func requestPattern(c *gin.Context) (pattern.CanonicalQuad[term.Term], error) {
	src := c.Query("pattern")
	if src == "" {
		pos := func(key string) string {
			if v := c.Query(key); v != "" {
				return v
			}
			return "_"
		}
		g := c.Query("g")
		switch g {
		case "":
		case "default":
			g = " :default"
		default:
			g = " " + g
		}
		src = fmt.Sprintf("[%s %s %s%s]", pos("s"), pos("p"), pos("o"), g)
	}
	p, err := notation.ParsePattern(src)
	if err != nil {
		return p, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return p, nil
}

func limitParam(c *gin.Context) (int, error) {
	v := c.Query("limit")
	if v == "" {
		return -1, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid limit %q", errBadRequest, v)
	}
	return n, nil
}

// handleMatch returns the quads matching a pattern.
func (s *Server) handleMatch(c *gin.Context) {
	p, err := requestPattern(c)
	if err != nil {
		handleError(c, err)
		return
	}
	limit, err := limitParam(c)
	if err != nil {
		handleError(c, err)
		return
	}

	resp := MatchResponse{Pattern: p.String(), Quads: []QuadJSON{}}
	err = s.data.View(func(d *store.IndexedDataset[term.Term]) error {
		for q := range d.PatternMatching(p) {
			if limit >= 0 && len(resp.Quads) == limit {
				break
			}
			resp.Quads = append(resp.Quads, toJSON(q))
		}
		return nil
	})
	if err != nil {
		handleError(c, err)
		return
	}
	resp.Count = len(resp.Quads)
	c.JSON(http.StatusOK, resp)
}

// handleInsert adds the facts in the request body.
func (s *Server) handleInsert(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		handleError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	qs, err := notation.ParseQuads(string(body))
	if err != nil {
		handleError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	inserted, total := 0, 0
	err = s.data.Update(func(d *store.IndexedDataset[term.Term]) error {
		for _, q := range qs {
			if d.Insert(q) {
				inserted++
			}
		}
		total = d.Len()
		return nil
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"parsed": len(qs), "inserted": inserted, "total": total})
}

// handleExtract removes and returns the quads matching a pattern.
func (s *Server) handleExtract(c *gin.Context) {
	p, err := requestPattern(c)
	if err != nil {
		handleError(c, err)
		return
	}

	resp := MatchResponse{Pattern: p.String(), Quads: []QuadJSON{}}
	err = s.data.Update(func(d *store.IndexedDataset[term.Term]) error {
		for q := range d.ExtractPatternMatching(p) {
			resp.Quads = append(resp.Quads, toJSON(q))
		}
		return nil
	})
	if err != nil {
		handleError(c, err)
		return
	}
	resp.Count = len(resp.Quads)
	c.JSON(http.StatusOK, resp)
}

// handleRemoveGraph drops a graph and returns its triples.
func (s *Server) handleRemoveGraph(c *gin.Context) {
	var label *term.Term
	g := c.Query("g")
	switch g {
	case "":
		handleError(c, fmt.Errorf("%w: missing graph parameter g", errBadRequest))
		return
	case "default":
	default:
		t, err := notation.ParseTerm(g)
		if err != nil {
			handleError(c, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		label = &t
	}

	var triples []QuadJSON
	err := s.data.Update(func(d *store.IndexedDataset[term.Term]) error {
		removed, ok := d.RemoveGraph(label)
		if !ok {
			return fmt.Errorf("%w: graph %s", errNotFound, g)
		}
		triples = make([]QuadJSON, 0, removed.Len())
		for t := range removed.All() {
			triples = append(triples, toJSON(t.InDefaultGraph()))
		}
		return nil
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"graph": g, "triples": triples, "count": len(triples)})
}

// handleStats reports sizes of the dataset and its role sets.
func (s *Server) handleStats(c *gin.Context) {
	var resp StatsResponse
	err := s.data.View(func(d *store.IndexedDataset[term.Term]) error {
		resp = StatsResponse{
			Quads:        d.Len(),
			DefaultGraph: d.DefaultGraphLen(),
			NamedGraphs:  d.NamedGraphCount(),
			Resources:    d.ResourceCount(),
			Subjects:     d.SubjectCount(),
			Predicates:   d.PredicateCount(),
			Objects:      d.ObjectCount(),
		}
		return nil
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func handleError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest):
		code = http.StatusBadRequest
	case errors.Is(err, errNotFound):
		code = http.StatusNotFound
	}
	c.JSON(code, gin.H{"error": strings.TrimSpace(err.Error())})
}
