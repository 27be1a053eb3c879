package service

import (
	"context"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/internal/policy"
	"github.com/ganeshsabale-99/DMP-Project/pkg/pagination"
)

func (s *Service) CreatePost(ctx context.Context, pr domain.Principal, n domain.NewPost) (domain.Post, error) {
	if err := s.policy.Authorize(pr, policy.PostCreate); err != nil {
		return domain.Post{}, s.done("post", policy.PostCreate, pr, "", err)
	}
	p, err := s.engine.CreatePost(n, pr.ID)
	if err != nil {
		return domain.Post{}, s.done("post", policy.PostCreate, pr, "", err)
	}
	p, err = s.store.CreatePost(ctx, p)
	return p, s.done("post", policy.PostCreate, pr, p.ID, err)
}

func (s *Service) ListPosts(ctx context.Context, pr domain.Principal, f domain.PostFilter, page pagination.Params) ([]domain.Post, int, error) {
	if err := s.policy.Authorize(pr, policy.PostList); err != nil {
		return nil, 0, s.done("post", policy.PostList, pr, "", err)
	}
	return s.store.ListPosts(ctx, f, page)
}

func (s *Service) GetPost(ctx context.Context, pr domain.Principal, id string) (domain.Post, error) {
	if err := s.policy.Authorize(pr, policy.PostGet); err != nil {
		return domain.Post{}, s.done("post", policy.PostGet, pr, id, err)
	}
	return s.store.GetPost(ctx, id)
}

func (s *Service) UpdatePost(ctx context.Context, pr domain.Principal, id string, patch domain.PostPatch) (domain.Post, error) {
	return mutate(ctx, s, s.posts(), pr, policy.PostUpdate, id, plain(func(p domain.Post) (domain.Post, error) {
		return s.engine.UpdatePostFields(p, patch)
	}))
}

func (s *Service) DeletePost(ctx context.Context, pr domain.Principal, id string) error {
	return remove(ctx, s, s.posts(), pr, policy.PostDelete, id, s.store.DeletePost)
}

func (s *Service) SubmitPost(ctx context.Context, pr domain.Principal, id string) (domain.Post, error) {
	return mutate(ctx, s, s.posts(), pr, policy.PostSubmit, id, s.engine.SubmitForApproval)
}

func (s *Service) ApprovePost(ctx context.Context, pr domain.Principal, id string) (domain.Post, error) {
	return mutate(ctx, s, s.posts(), pr, policy.PostApprove, id, plain(func(p domain.Post) (domain.Post, error) {
		return s.engine.Approve(p, pr.ID)
	}))
}

func (s *Service) PublishPost(ctx context.Context, pr domain.Principal, id string) (domain.Post, error) {
	return mutate(ctx, s, s.posts(), pr, policy.PostPublish, id, s.engine.Publish)
}

func (s *Service) FailPost(ctx context.Context, pr domain.Principal, id, reason string) (domain.Post, error) {
	return mutate(ctx, s, s.posts(), pr, policy.PostFail, id, plain(func(p domain.Post) (domain.Post, error) {
		return s.engine.Fail(p, reason)
	}))
}

func (s *Service) ArchivePost(ctx context.Context, pr domain.Principal, id string) (domain.Post, error) {
	return mutate(ctx, s, s.posts(), pr, policy.PostArchive, id, plain(s.engine.Archive))
}

func (s *Service) RecordEngagement(ctx context.Context, pr domain.Principal, id string, delta domain.Engagement) (domain.Post, error) {
	return mutate(ctx, s, s.posts(), pr, policy.PostEngagement, id, plain(func(p domain.Post) (domain.Post, error) {
		return s.engine.RecordEngagement(p, delta)
	}))
}

func (s *Service) UpdatePostMetadata(ctx context.Context, pr domain.Principal, id string, m domain.PostMetadata) (domain.Post, error) {
	return mutate(ctx, s, s.posts(), pr, policy.PostMetadata, id, plain(func(p domain.Post) (domain.Post, error) {
		return s.engine.UpdateMetadata(p, m)
	}))
}
