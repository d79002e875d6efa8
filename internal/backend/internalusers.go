// internal/backend/internalusers.go
package backend

import (
	"context"
	"strconv"
	"strings"

	"dird-service/internal/clients/confd"
	"dird-service/internal/domain/directory"
	"dird-service/internal/domain/source"

	"go.uber.org/zap"
)

// internalUsersDriver queries confd's directory view of the platform user
// base. Relations are fully populated so phone clients can place calls back.
type internalUsersDriver struct {
	maker        resultMaker
	confd        *confd.Client
	xivoID       string
	firstMatched []string
	logger       *zap.Logger
}

func newInternalUsers(cfg *source.Source, deps Deps) (Driver, error) {
	return &internalUsersDriver{
		maker:        makerFor(cfg),
		confd:        deps.Confd,
		xivoID:       cfg.Extra("xivo_uuid", ""),
		firstMatched: cfg.FirstMatchedColumns,
		logger:       deps.Logger,
	}, nil
}

func (d *internalUsersDriver) Search(ctx context.Context, term string, rc RequestContext) ([]directory.Result, error) {
	users, err := d.confd.ListUsers(ctx, rc.Token, rc.TenantUUID, term)
	if err != nil {
		return nil, err
	}

	results := make([]directory.Result, 0, len(users))
	for _, u := range users {
		results = append(results, d.makeResult(u))
	}
	return results, nil
}

func (d *internalUsersDriver) FirstMatch(ctx context.Context, exten string, rc RequestContext) (*directory.Result, error) {
	users, err := d.confd.ListUsers(ctx, rc.Token, rc.TenantUUID, "")
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		raw := userRow(u)
		for _, column := range d.firstMatched {
			if value, ok := raw[column].(string); ok && strings.EqualFold(value, exten) {
				result := d.makeResult(u)
				return &result, nil
			}
		}
	}
	return nil, nil
}

func (d *internalUsersDriver) makeResult(u confd.User) directory.Result {
	userID := u.ID
	entryID := strconv.Itoa(u.ID)
	relations := directory.Relations{
		XivoID:        d.xivoID,
		AgentID:       u.AgentID,
		UserID:        &userID,
		UserUUID:      u.UUID,
		EndpointID:    u.LineID,
		SourceEntryID: &entryID,
	}
	return d.maker.make(userRow(u), relations)
}

func userRow(u confd.User) map[string]any {
	numbers := []any{}
	if u.Exten != "" {
		numbers = append(numbers, u.Exten)
	}
	if u.MobileNo != "" {
		numbers = append(numbers, u.MobileNo)
	}
	return map[string]any{
		"id":                  u.ID,
		"uuid":                u.UUID,
		"firstname":           u.Firstname,
		"lastname":            u.Lastname,
		"email":               u.Email,
		"exten":               u.Exten,
		"mobile_phone_number": u.MobileNo,
		"voicemail_number":    u.Voicemail,
		"userfield":           u.Userfield,
		"numbers":             numbers,
	}
}
