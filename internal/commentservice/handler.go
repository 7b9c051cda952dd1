package commentservice

import (
	"context"
	"database/sql"

	"github.com/writelyhq/writely/internal/common"
)

func NewCommentService(db *sql.DB) *CommentService {
	return &CommentService{m: newCommentModel(db)}
}

type SubmitCommentRequest struct {
	PostID int     `json:"post_id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Site   *string `json:"site"`
	Body   string  `json:"body"`
}

// Submit records a comment through the general submission path. It
// starts out pending and becomes visible once the post author approves
// it.
func (s *CommentService) Submit(ctx context.Context, req *SubmitCommentRequest) (*Comment, error) {
	return s.create(ctx, req, false)
}

// SubmitInline records a comment submitted directly on the post detail
// page. Unlike Submit, these are approved immediately.
func (s *CommentService) SubmitInline(ctx context.Context, req *SubmitCommentRequest) (*Comment, error) {
	return s.create(ctx, req, true)
}

func (s *CommentService) create(ctx context.Context, req *SubmitCommentRequest, approved bool) (*Comment, error) {
	v := common.NewValidator()
	validateInt(v, req.PostID, "post_id")
	validateAuthorName(v, req.Name)
	validateAuthorEmail(v, req.Email)
	validateBody(v, req.Body)
	validateSite(v, req.Site)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	comment := &Comment{
		PostID:      req.PostID,
		AuthorName:  req.Name,
		AuthorEmail: req.Email,
		Site:        req.Site,
		Body:        req.Body,
		Approved:    approved,
	}

	if err := s.m.insert(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

// Approve bulk-approves the given comments on posts owned by authorID
// and returns the number actually approved.
func (s *CommentService) Approve(ctx context.Context, authorID int, ids []int) (int, error) {
	v := common.NewValidator()
	validateInt(v, authorID, "user_id")
	v.Check(len(ids) > 0, "ids", "must be provided")
	for _, id := range ids {
		if id < 1 {
			v.AddError("ids", "must all be greater than zero")
			break
		}
	}
	if !v.Valid() {
		return 0, v.ValidationError()
	}

	return s.m.approve(ctx, authorID, ids)
}

// Delete removes a comment. Only the author of the commented post may
// delete it.
func (s *CommentService) Delete(ctx context.Context, commentID, userID int) error {
	v := common.NewValidator()
	validateInt(v, commentID, "id")
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	return s.m.delete(ctx, commentID, userID)
}

// ListApproved returns the approved comments on a post, newest first.
func (s *CommentService) ListApproved(ctx context.Context, postID int) ([]Comment, error) {
	v := common.NewValidator()
	validateInt(v, postID, "post_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getApprovedByPost(ctx, postID)
}

// ListPending returns comments awaiting moderation on posts owned by
// authorID. Default limit is 10.
func (s *CommentService) ListPending(ctx context.Context, authorID int, limit *int) ([]Comment, error) {
	v := common.NewValidator()
	validateInt(v, authorID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if *limit < 1 {
		*limit = 10
	}

	return s.m.getPendingForAuthor(ctx, authorID, *limit)
}
