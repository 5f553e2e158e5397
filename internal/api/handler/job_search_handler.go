package handler

import (
	"context"

	"resume-flow-go/internal/jobs"
	"resume-flow-go/internal/processor"
	"resume-flow-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// JobSearchHandler 负责处理与职位相关的搜索请求。
type JobSearchHandler struct {
	service *processor.ResumeService
}

// NewJobSearchHandler 创建一个新的 JobSearchHandler 实例。
func NewJobSearchHandler(service *processor.ResumeService) *JobSearchHandler {
	return &JobSearchHandler{service: service}
}

// JobSearchRequest 岗位搜索请求
type JobSearchRequest struct {
	Resume *types.ResumeRecord `json:"resume"`
	Filter string              `json:"filter"` // all | best
}

// JobSearchResponse 岗位搜索响应
type JobSearchResponse struct {
	Jobs  []types.JobMatch `json:"jobs"`
	Total int              `json:"total"`
}

// HandleSearchJobs 按简历对岗位目录打分
// POST /api/v1/jobs/search
func (h *JobSearchHandler) HandleSearchJobs(ctx context.Context, c *app.RequestContext) {
	var req JobSearchRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "请求体不是合法的JSON"})
		return
	}
	if req.Resume == nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "resume 不能为空"})
		return
	}
	filter, err := jobs.ParseFilter(req.Filter)
	if err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
		return
	}

	matches, err := h.service.SearchJobs(ctx, req.Resume, filter)
	if err != nil {
		writeError(ctx, c, statusForError(err), err)
		return
	}
	if matches == nil {
		matches = []types.JobMatch{}
	}
	c.JSON(consts.StatusOK, JobSearchResponse{Jobs: matches, Total: len(matches)})
}
