package data

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func String(v string) *string {
	return &v
}

type MockSSMClient struct {
	TestSuccess bool
	pageServed  bool
}

func InitializeSSMClient(testSuccess bool) SSMRepository {
	mock := &MockSSMClient{
		TestSuccess: testSuccess,
	}

	return &SSMDao{
		SSM:    mock,
		Logger: logrus.New(),
	}
}

// GetParametersByPath serves the connection parameters over two pages to
// exercise the NextToken loop.
func (m *MockSSMClient) GetParametersByPath(ctx context.Context, input *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	if !m.TestSuccess {
		return nil, errors.New("error in GetParametersByPath")
	}

	if !m.pageServed {
		m.pageServed = true
		return &ssm.GetParametersByPathOutput{
			Parameters: []types.Parameter{
				{
					Name:  String("/inventory/DATABASE_RDS_ENDPOINT"),
					Value: String("db.example.internal"),
				},
				{
					Name:  String("/inventory/DATABASE_NAME"),
					Value: String("inventory"),
				},
			},
			NextToken: String("page2"),
		}, nil
	}

	return &ssm.GetParametersByPathOutput{
		Parameters: []types.Parameter{
			{
				Name:  String("/inventory/ATTACHMENT_BUCKET"),
				Value: String("inventory-attachments"),
			},
		},
		NextToken: nil,
	}, nil
}

func Test_GetParameters_Success(t *testing.T) {
	//Arrange
	ssmRepository := InitializeSSMClient(true)

	//Act
	actual, err := ssmRepository.GetParameters()

	//Assert
	assert.NoError(t, err)
	assert.Equal(t, "db.example.internal", actual["/inventory/DATABASE_RDS_ENDPOINT"])
	assert.Equal(t, "inventory", actual["/inventory/DATABASE_NAME"])
	assert.Equal(t, "inventory-attachments", actual["/inventory/ATTACHMENT_BUCKET"])
}

func Test_GetParameters_Failure(t *testing.T) {
	//Arrange
	ssmRepository := InitializeSSMClient(false)
	expected := "error in GetParametersByPath"

	//Act
	_, actual := ssmRepository.GetParameters()

	//Assert
	assert.Equal(t, expected, actual.Error())
}
