package restgrader

import (
	"context"
	"errors"
	"net/http"

	"github.com/autograde/go-grader/filestore"
	"github.com/autograde/go-grader/judger"
	"github.com/autograde/go-grader/submission"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Grader grades a stored submission archive
type Grader interface {
	Grade(ctx context.Context, archivePath, language string) (*judger.Report, error)
	Languages() []string
}

type gradeHandle struct {
	grader Grader
	fs     filestore.FileStore
	logger *zap.Logger
}

// NewGradeHandle creates a new grade handle
func NewGradeHandle(grader Grader, fs filestore.FileStore, logger *zap.Logger) Register {
	return &gradeHandle{
		grader: grader,
		fs:     fs,
		logger: logger,
	}
}

func (g *gradeHandle) Register(r *gin.Engine) {
	r.POST("/grade", g.handleGrade)
	r.GET("/languages", g.handleLanguages)
}

func (g *gradeHandle) handleGrade(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, judger.NewErrorResponse(err))
		return
	}
	fi, err := fh.Open()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, judger.NewErrorResponse(err))
		return
	}
	defer fi.Close()

	id, err := g.fs.Add(fh.Filename, fi)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, judger.NewErrorResponse(err))
		return
	}
	defer g.fs.Remove(id)

	_, p, ok := g.fs.Get(id)
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, judger.NewErrorResponse(errors.New("uploaded archive lost")))
		return
	}

	g.logger.Debug("grade request", zap.String("file", fh.Filename), zap.Int64("size", fh.Size))
	rt, err := g.grader.Grade(c.Request.Context(), p, c.PostForm("language"))
	if err != nil {
		status := http.StatusUnprocessableEntity
		if submission.KindOf(err) == submission.KindInternal {
			status = http.StatusInternalServerError
		}
		c.AbortWithStatusJSON(status, judger.NewErrorResponse(err))
		return
	}
	c.JSON(http.StatusOK, rt)
}

func (g *gradeHandle) handleLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, g.grader.Languages())
}
