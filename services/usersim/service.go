package usersim

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/MarcGrol/useradminclient/lib/myerrors"
	"github.com/MarcGrol/useradminclient/lib/mylog"
	"github.com/MarcGrol/useradminclient/lib/mystore"
	"github.com/MarcGrol/useradminclient/lib/mytime"
	"github.com/MarcGrol/useradminclient/lib/myuuid"
)

type service struct {
	userStore    mystore.Store[User]
	sessionStore mystore.Store[refreshSession]
	signingKey   []byte
	accessTTL    time.Duration
	refreshTTL   time.Duration
	nower        mytime.Nower
	uuider       myuuid.UUIDer
	logger       mylog.Logger
}

func newService(userStore mystore.Store[User], sessionStore mystore.Store[refreshSession],
	signingKey []byte, accessTTL time.Duration, refreshTTL time.Duration,
	nower mytime.Nower, uuider myuuid.UUIDer) *service {
	return &service{
		userStore:    userStore,
		sessionStore: sessionStore,
		signingKey:   signingKey,
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
		nower:        nower,
		uuider:       uuider,
		logger:       mylog.New("usersim"),
	}
}

func (s *service) listUsers(c context.Context, req ListUsersRequest) ([]User, error) {
	users, err := s.userStore.List(c)
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error listing users: %s", err))
	}

	matches := []User{}
	for _, u := range users {
		if req.Role != "" && u.Role != req.Role {
			continue
		}
		if req.Search != "" &&
			!strings.Contains(strings.ToLower(u.FullName), strings.ToLower(req.Search)) &&
			!strings.Contains(strings.ToLower(u.EmailAddress), strings.ToLower(req.Search)) {
			continue
		}
		matches = append(matches, u)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].UID < matches[j].UID
	})

	if req.Limit > 0 && len(matches) > req.Limit {
		matches = matches[:req.Limit]
	}

	return matches, nil
}

func (s *service) getUser(c context.Context, userUID string) (User, error) {
	user, exists, err := s.userStore.Get(c, userUID)
	if err != nil {
		return User{}, myerrors.NewInternalError(fmt.Errorf("error fetching user %s: %s", userUID, err))
	}
	if !exists {
		return User{}, myerrors.NewNotFoundError(fmt.Errorf("user with uid %s not known", userUID))
	}

	return user, nil
}

func (s *service) createUser(c context.Context, user User) (User, error) {
	now := s.nower.Now()

	user.UID = s.uuider.Create()
	user.Status = StatusPending
	user.CreatedAt = now
	user.LastModified = &now

	err := s.userStore.Put(c, user.UID, user)
	if err != nil {
		return User{}, myerrors.NewInternalError(fmt.Errorf("error storing user: %s", err))
	}

	s.logger.Log(c, user.UID, mylog.SeverityInfo, "Created user %s", user.UID)

	return user, nil
}

func (s *service) updateUser(c context.Context, userUID string, update User) (User, error) {
	user, err := s.getUser(c, userUID)
	if err != nil {
		return User{}, err
	}

	now := s.nower.Now()
	update.UID = user.UID
	update.Status = user.Status
	update.CreatedAt = user.CreatedAt
	update.LastModified = &now

	err = s.userStore.Put(c, userUID, update)
	if err != nil {
		return User{}, myerrors.NewInternalError(fmt.Errorf("error storing user %s: %s", userUID, err))
	}

	return update, nil
}

func (s *service) patchUser(c context.Context, userUID string, patch User) (User, error) {
	user, err := s.getUser(c, userUID)
	if err != nil {
		return User{}, err
	}

	if patch.FullName != "" {
		user.FullName = patch.FullName
	}
	if patch.EmailAddress != "" {
		user.EmailAddress = patch.EmailAddress
	}
	if patch.Role != "" {
		user.Role = patch.Role
	}
	now := s.nower.Now()
	user.LastModified = &now

	err = s.userStore.Put(c, userUID, user)
	if err != nil {
		return User{}, myerrors.NewInternalError(fmt.Errorf("error storing user %s: %s", userUID, err))
	}

	return user, nil
}

func (s *service) approveUser(c context.Context, userUID string) (User, error) {
	user, err := s.getUser(c, userUID)
	if err != nil {
		return User{}, err
	}

	now := s.nower.Now()
	user.Status = StatusApproved
	user.LastModified = &now

	err = s.userStore.Put(c, userUID, user)
	if err != nil {
		return User{}, myerrors.NewInternalError(fmt.Errorf("error storing user %s: %s", userUID, err))
	}

	s.logger.Log(c, user.UID, mylog.SeverityInfo, "Approved user %s", user.UID)

	return user, nil
}

func (s *service) deleteUser(c context.Context, userUID string) error {
	_, err := s.getUser(c, userUID)
	if err != nil {
		return err
	}

	err = s.userStore.Remove(c, userUID)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error removing user %s: %s", userUID, err))
	}

	return nil
}
