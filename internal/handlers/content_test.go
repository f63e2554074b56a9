package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/nanban-api/internal/constants"
	"github.com/yukikurage/nanban-api/internal/dto"
	apierrors "github.com/yukikurage/nanban-api/internal/errors"
	"github.com/yukikurage/nanban-api/internal/models"
	"github.com/yukikurage/nanban-api/internal/services"
)

func (s *apiSuite) TestWikiLifecycle() {
	_, _, project := s.setupBoard()

	w := s.request(http.MethodPost, "/api/orgs/acme/projects/ops/wiki", gin.H{"title": "Overview", "content": "v1"})
	s.requireStatus(w, http.StatusCreated)
	var page dto.WikiPageDTO
	s.decode(w, &page)

	w = s.request(http.MethodPost, "/api/orgs/acme/projects/ops/wiki", gin.H{"title": "Overview"})
	s.Equal(http.StatusConflict, w.Code)

	w = s.request(http.MethodPut, fmt.Sprintf("/api/projects/%d/wiki", project.ID), gin.H{"title": "Overview", "content": "v2"})
	s.requireStatus(w, http.StatusOK)
	var upserted dto.WikiPageDTO
	s.decode(w, &upserted)
	s.Equal(page.ID, upserted.ID)
	s.Equal("v2", upserted.Content)
	s.True(upserted.LastEditedAt.After(page.LastEditedAt))

	w = s.request(http.MethodPatch, fmt.Sprintf("/api/wiki/%d", page.ID), gin.H{"thumbnail": "thumbs/overview.png"})
	s.requireStatus(w, http.StatusOK)
	var patched dto.WikiPageDTO
	s.decode(w, &patched)
	s.Require().NotNil(patched.Thumbnail)
	s.Equal("v2", patched.Content)

	w = s.request(http.MethodGet, "/api/orgs/acme/projects/ops/wiki", nil)
	s.requireStatus(w, http.StatusOK)
	var listing dto.WikiListingDTO
	s.decode(w, &listing)
	s.Require().Len(listing.Pages, 1)
	s.NotContains(w.Body.String(), `"content"`)

	w = s.request(http.MethodGet, fmt.Sprintf("/api/projects/%d/wiki", project.ID), nil)
	s.requireStatus(w, http.StatusOK)
	s.Contains(w.Body.String(), "Overview")

	w = s.request(http.MethodDelete, fmt.Sprintf("/api/wiki/%d", page.ID), nil)
	s.Equal(http.StatusNoContent, w.Code)
	w = s.request(http.MethodGet, fmt.Sprintf("/api/wiki/%d", page.ID), nil)
	s.Equal(http.StatusNotFound, w.Code)
	w = s.request(http.MethodPatch, fmt.Sprintf("/api/wiki/%d", page.ID), gin.H{})
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *apiSuite) TestDirectMessagesAndInbox() {
	s.setupBoard()
	bob := s.signUp("bob")

	w := s.request(http.MethodPost, "/api/orgs/acme/dms", gin.H{"user_id": bob.ID})
	s.requireStatus(w, http.StatusOK)
	var dm dto.ChatDTO
	s.decode(w, &dm)
	s.Equal(models.ChatTypeDM, dm.Type)

	w = s.request(http.MethodPost, "/api/orgs/acme/dms", gin.H{"user_id": bob.ID})
	s.requireStatus(w, http.StatusOK)
	var again dto.ChatDTO
	s.decode(w, &again)
	s.Equal(dm.ID, again.ID)

	w = s.request(http.MethodPost, "/api/orgs/nope/dms", gin.H{"user_id": bob.ID})
	s.Equal(http.StatusNotFound, w.Code)

	w = s.request(http.MethodPost, fmt.Sprintf("/api/chats/%d/messages", dm.ID), gin.H{"body": "hi bob"})
	s.requireStatus(w, http.StatusCreated)

	w = s.request(http.MethodPost, "/api/chats", gin.H{"organization_id": dm.OrganizationID, "name": "general", "type": "group"})
	s.requireStatus(w, http.StatusOK)
	var general dto.ChatDTO
	s.decode(w, &general)

	w = s.request(http.MethodPost, "/api/chats", gin.H{"organization_id": dm.OrganizationID, "name": "general", "type": "broadcast"})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.request(http.MethodPost, fmt.Sprintf("/api/chats/%d/participants", general.ID), gin.H{"user_id": bob.ID})
	s.requireStatus(w, http.StatusOK)

	w = s.request(http.MethodGet, fmt.Sprintf("/api/chats?organization_id=%d", dm.OrganizationID), nil)
	s.requireStatus(w, http.StatusOK)
	var chats struct {
		Chats []dto.ChatDTO `json:"chats"`
	}
	s.decode(w, &chats)
	s.Len(chats.Chats, 2)

	s.login("bob")
	w = s.request(http.MethodGet, "/api/orgs/acme/inbox", nil)
	s.requireStatus(w, http.StatusOK)
	var inbox struct {
		Chats []services.InboxEntry `json:"chats"`
	}
	s.decode(w, &inbox)
	s.Require().Len(inbox.Chats, 2)
	s.Equal("alice", inbox.Chats[0].DisplayName)
	s.Equal("general", inbox.Chats[1].DisplayName)

	w = s.request(http.MethodPost, fmt.Sprintf("/api/chats/%d/messages", dm.ID), gin.H{"body": "hi alice"})
	s.requireStatus(w, http.StatusCreated)

	w = s.request(http.MethodGet, fmt.Sprintf("/api/chats/%d/messages", dm.ID), nil)
	s.requireStatus(w, http.StatusOK)
	var messages struct {
		Messages []dto.MessageDTO `json:"messages"`
	}
	s.decode(w, &messages)
	s.Require().Len(messages.Messages, 2)
	s.Equal("hi bob", messages.Messages[0].Body)
	s.Require().NotNil(messages.Messages[1].Sender)
	s.Equal("bob", messages.Messages[1].Sender.Name)

	w = s.request(http.MethodPost, "/api/orgs/acme/dms", gin.H{"user_id": bob.ID})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apierrors.ErrCodeValidationFailed, s.errorCode(w))
}

func (s *apiSuite) TestInboxFallbackLabel() {
	alice, org, _ := s.setupBoard()
	bob := s.signUp("bob")

	pair := models.NewDMPair(alice.ID, bob.ID)
	w := s.request(http.MethodPost, "/api/chats", gin.H{"organization_id": org.ID, "name": pair.Key(), "type": "dm"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apierrors.ErrCodeValidationFailed, s.errorCode(w))

	legacy := &models.Chat{OrganizationID: org.ID, Type: models.ChatTypeDM, Name: "legacy", LookupKey: "legacy"}
	s.Require().NoError(s.db.Create(legacy).Error)
	w = s.request(http.MethodPost, fmt.Sprintf("/api/chats/%d/participants", legacy.ID), gin.H{"user_id": alice.ID})
	s.requireStatus(w, http.StatusOK)

	w = s.request(http.MethodGet, "/api/orgs/acme/inbox", nil)
	s.requireStatus(w, http.StatusOK)
	s.Contains(w.Body.String(), constants.DirectMessageLabel)
}

func (s *apiSuite) TestProjectsAndDashboard() {
	_, org, project := s.setupBoard()
	bob := s.signUp("bob")

	w := s.request(http.MethodPost, "/api/projects", gin.H{"organization_id": org.ID, "name": "Ops again", "slug": "ops"})
	s.Equal(http.StatusConflict, w.Code)

	w = s.request(http.MethodPost, fmt.Sprintf("/api/projects/%d/members", project.ID), gin.H{"user_id": bob.ID})
	s.requireStatus(w, http.StatusOK)

	s.createBoardTask("open", nil)
	done := s.createBoardTask("closed", nil)
	w = s.request(http.MethodPut, fmt.Sprintf("/api/tasks/%d/status", done.ID), gin.H{"status": "done"})
	s.requireStatus(w, http.StatusOK)

	w = s.request(http.MethodGet, "/api/orgs/acme/dashboard", nil)
	s.requireStatus(w, http.StatusOK)
	var dashboard services.CompanyDashboard
	s.decode(w, &dashboard)
	s.Require().Len(dashboard.Projects, 1)
	summary := dashboard.Projects[0]
	s.Equal(50, summary.Completion)
	s.Equal(int64(2), summary.TotalTasks)
	s.Len(summary.Members, 2)

	w = s.request(http.MethodGet, "/api/orgs/nope/dashboard", nil)
	s.requireStatus(w, http.StatusOK)
	s.JSONEq(`{"organization":null,"projects":[]}`, w.Body.String())

	w = s.request(http.MethodGet, fmt.Sprintf("/api/projects?organization_id=%d", org.ID), nil)
	s.requireStatus(w, http.StatusOK)
	s.Contains(w.Body.String(), `"slug":"ops"`)

	w = s.request(http.MethodDelete, fmt.Sprintf("/api/projects/%d/members/%d", project.ID, bob.ID), nil)
	s.Equal(http.StatusNoContent, w.Code)
	w = s.request(http.MethodGet, "/api/orgs/acme/dashboard", nil)
	s.requireStatus(w, http.StatusOK)
	s.decode(w, &dashboard)
	s.Require().Len(dashboard.Projects, 1)
	s.Len(dashboard.Projects[0].Members, 1, "member removal shows up right away")

	w = s.request(http.MethodDelete, fmt.Sprintf("/api/projects/%d", project.ID), nil)
	s.Equal(http.StatusNoContent, w.Code)
	w = s.request(http.MethodGet, "/api/orgs/acme/dashboard", nil)
	s.requireStatus(w, http.StatusOK)
	s.decode(w, &dashboard)
	s.Empty(dashboard.Projects)
	w = s.request(http.MethodGet, "/api/orgs/acme/projects/ops/kanban", nil)
	s.requireStatus(w, http.StatusOK)
	s.Contains(w.Body.String(), `"project":null`)
}

func (s *apiSuite) TestUserDirectory() {
	alice := s.signUp("alice")
	s.signUp("bob")
	s.login("alice")

	w := s.request(http.MethodGet, "/api/users/by-email?email=ALICE@example.com", nil)
	s.requireStatus(w, http.StatusOK)
	s.Contains(w.Body.String(), `"name":"alice"`)

	w = s.request(http.MethodGet, "/api/users/by-email?email=nobody@example.com", nil)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.request(http.MethodGet, "/api/users/by-email", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.request(http.MethodPatch, fmt.Sprintf("/api/users/%d", alice.ID), gin.H{"avatar_url": "https://example.com/a.png"})
	s.requireStatus(w, http.StatusOK)
	var updated dto.UserDTO
	s.decode(w, &updated)
	s.Equal("alice", updated.Name)
	s.Require().NotNil(updated.AvatarURL)

	w = s.request(http.MethodPatch, fmt.Sprintf("/api/users/%d", alice.ID), gin.H{"name": "  "})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apierrors.ErrCodeValidationFailed, s.errorCode(w))

	w = s.request(http.MethodGet, "/api/users", nil)
	s.requireStatus(w, http.StatusOK)
	var users struct {
		Users []dto.UserDTO `json:"users"`
	}
	s.decode(w, &users)
	s.Len(users.Users, 2)
	s.Equal("alice", users.Users[0].Name)
}
