package http

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/autistic-symposium/searcher-cowswap-go/internal/config"
	"github.com/autistic-symposium/searcher-cowswap-go/internal/http/httputil"
	"github.com/autistic-symposium/searcher-cowswap-go/internal/instance"
	"github.com/autistic-symposium/searcher-cowswap-go/internal/services/router"
)

// SolveHandler accepts one instance document per request and returns
// the solved spread solution.
type SolveHandler struct {
	solver *router.Solver
	conf   *config.SolverConfig
}

func NewSolveHandler(solver *router.Solver, conf *config.SolverConfig) *SolveHandler {
	return &SolveHandler{solver: solver, conf: conf}
}

func (h *SolveHandler) Root() string {
	return "/solve"
}

func (h *SolveHandler) SetRoutes(pub *gin.RouterGroup) {
	pub.POST("", h.solve)
}

// solveResponse pairs the solution document with the per-order errors
// of the same batch, so partial failures stay visible.
type solveResponse struct {
	Solution *instance.SolutionDocument `json:"solution"`
	Failed   map[string]string          `json:"failed,omitempty"`
}

func (h *SolveHandler) solve(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		httputil.BadRequest(c, "unreadable body")
		return
	}

	doc, err := instance.Parse(body)
	if err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	jobs, parseFailed := instance.BuildJobs(doc)
	if len(jobs) == 0 && len(parseFailed) == 0 {
		httputil.UnprocessableEntity(c, "instance has no orders")
		return
	}

	result := h.solver.SolveBatch(jobs, h.conf.BatchWorkers)

	failed := make(map[string]string, len(parseFailed)+len(result.Errors))
	for num, ferr := range parseFailed {
		failed[string(num)] = ferr.Error()
	}
	for num, serr := range result.Errors {
		failed[string(num)] = serr.Error()
	}

	httputil.Success(c, solveResponse{
		Solution: instance.BuildSolutionDocument(doc, result),
		Failed:   failed,
	})
}
