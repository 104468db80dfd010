// Package cognito は社員ログインを Cognito ユーザープールで管理するアダプタです。
package cognito

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"github.com/ogurasousui/philocom-backoffice/internal/core/access"
	"github.com/ogurasousui/philocom-backoffice/internal/core/employee"
)

// Client は Provisioner が利用する Cognito 管理 API の部分集合です。
type Client interface {
	AdminCreateUser(ctx context.Context, params *cip.AdminCreateUserInput, optFns ...func(*cip.Options)) (*cip.AdminCreateUserOutput, error)
	AdminAddUserToGroup(ctx context.Context, params *cip.AdminAddUserToGroupInput, optFns ...func(*cip.Options)) (*cip.AdminAddUserToGroupOutput, error)
	AdminDisableUser(ctx context.Context, params *cip.AdminDisableUserInput, optFns ...func(*cip.Options)) (*cip.AdminDisableUserOutput, error)
	AdminEnableUser(ctx context.Context, params *cip.AdminEnableUserInput, optFns ...func(*cip.Options)) (*cip.AdminEnableUserOutput, error)
	AdminDeleteUser(ctx context.Context, params *cip.AdminDeleteUserInput, optFns ...func(*cip.Options)) (*cip.AdminDeleteUserOutput, error)
}

var _ Client = (*cip.Client)(nil)

var _ employee.IdentityProvisioner = (*Provisioner)(nil)

// ErrLoginExists は同じログインメールのユーザーが既に存在する場合のエラーです。
// employee.ErrEmailAlreadyExists としても判定できます。
var ErrLoginExists = fmt.Errorf("cognito: login already exists: %w", employee.ErrEmailAlreadyExists)

// Provisioner は employee.IdentityProvisioner の Cognito 実装です。
type Provisioner struct {
	client     Client
	userPoolID string
	group      string
}

// NewProvisioner は Provisioner を生成します。group が空の場合は employees グループを使います。
func NewProvisioner(client Client, userPoolID, group string) *Provisioner {
	if strings.TrimSpace(group) == "" {
		group = access.DefaultEmployeeGroup
	}
	return &Provisioner{client: client, userPoolID: userPoolID, group: group}
}

// CreateLogin はユーザーを作成して社員グループに追加し、sub を返します。
// グループ追加に失敗した場合は作成したユーザーを削除します。
func (p *Provisioner) CreateLogin(ctx context.Context, in employee.LoginInput) (string, error) {
	attrs := []types.AttributeType{
		{Name: aws.String(access.ClaimEmail), Value: aws.String(in.LoginEmail)},
		{Name: aws.String("email_verified"), Value: aws.String("true")},
		{Name: aws.String(access.ClaimAssignedEmail), Value: aws.String(in.AssignedEmail)},
	}
	if in.Name != "" {
		attrs = append(attrs, types.AttributeType{Name: aws.String(access.ClaimName), Value: aws.String(in.Name)})
	}

	out, err := p.client.AdminCreateUser(ctx, &cip.AdminCreateUserInput{
		UserPoolId:             aws.String(p.userPoolID),
		Username:               aws.String(in.LoginEmail),
		UserAttributes:         attrs,
		DesiredDeliveryMediums: []types.DeliveryMediumType{types.DeliveryMediumTypeEmail},
	})
	if err != nil {
		var exists *types.UsernameExistsException
		if errors.As(err, &exists) {
			return "", ErrLoginExists
		}
		return "", fmt.Errorf("cognito: create user %s: %w", in.LoginEmail, err)
	}

	if _, err := p.client.AdminAddUserToGroup(ctx, &cip.AdminAddUserToGroupInput{
		UserPoolId: aws.String(p.userPoolID),
		Username:   aws.String(in.LoginEmail),
		GroupName:  aws.String(p.group),
	}); err != nil {
		groupErr := fmt.Errorf("cognito: add %s to group %s: %w", in.LoginEmail, p.group, err)
		if delErr := p.DeleteLogin(ctx, in.LoginEmail); delErr != nil {
			return "", errors.Join(groupErr, delErr)
		}
		return "", groupErr
	}

	return subjectOf(out.User), nil
}

// SetLoginEnabled はログインを有効化または無効化します。ユーザーが存在しない場合は何もしません。
func (p *Provisioner) SetLoginEnabled(ctx context.Context, loginEmail string, enabled bool) error {
	var err error
	if enabled {
		_, err = p.client.AdminEnableUser(ctx, &cip.AdminEnableUserInput{
			UserPoolId: aws.String(p.userPoolID),
			Username:   aws.String(loginEmail),
		})
	} else {
		_, err = p.client.AdminDisableUser(ctx, &cip.AdminDisableUserInput{
			UserPoolId: aws.String(p.userPoolID),
			Username:   aws.String(loginEmail),
		})
	}
	if err != nil && !isUserNotFound(err) {
		return fmt.Errorf("cognito: set enabled=%t for %s: %w", enabled, loginEmail, err)
	}
	return nil
}

// DeleteLogin はユーザーを削除します。既に存在しない場合は成功扱いです。
func (p *Provisioner) DeleteLogin(ctx context.Context, loginEmail string) error {
	_, err := p.client.AdminDeleteUser(ctx, &cip.AdminDeleteUserInput{
		UserPoolId: aws.String(p.userPoolID),
		Username:   aws.String(loginEmail),
	})
	if err != nil && !isUserNotFound(err) {
		return fmt.Errorf("cognito: delete user %s: %w", loginEmail, err)
	}
	return nil
}

func subjectOf(user *types.UserType) string {
	if user == nil {
		return ""
	}
	for _, attr := range user.Attributes {
		if aws.ToString(attr.Name) == access.ClaimSubject {
			return aws.ToString(attr.Value)
		}
	}
	return ""
}

func isUserNotFound(err error) bool {
	var notFound *types.UserNotFoundException
	return errors.As(err, &notFound)
}
