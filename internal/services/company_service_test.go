package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/theoribbi/tenantly/internal/common"
	"github.com/theoribbi/tenantly/internal/models"
)

type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) Create(ctx context.Context, company *models.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

func (m *MockCompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockCompanyRepository) GetBySlug(ctx context.Context, slug string) (*models.Company, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockCompanyRepository) List(ctx context.Context) ([]*models.Company, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Company), args.Error(1)
}

func (m *MockCompanyRepository) ListSchemaNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCompanyRepository) SetLogoURL(ctx context.Context, id uuid.UUID, logoURL string) error {
	args := m.Called(ctx, id, logoURL)
	return args.Error(0)
}

type MockProvisioner struct {
	mock.Mock
}

func (m *MockProvisioner) Provision(ctx context.Context, schemaName string) error {
	args := m.Called(ctx, schemaName)
	return args.Error(0)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) EnsureBucket(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStorage) UploadLogo(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, objectName, reader, size, contentType)
	return args.Error(0)
}

func (m *MockStorage) LogoURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) RemoveLogo(ctx context.Context, objectName string) error {
	args := m.Called(ctx, objectName)
	return args.Error(0)
}

type CompanyServiceTestSuite struct {
	suite.Suite
	mockRepo    *MockCompanyRepository
	provisioner *MockProvisioner
	storage     *MockStorage
	service     CompanyService
	ctx         context.Context
}

func (suite *CompanyServiceTestSuite) SetupTest() {
	suite.mockRepo = &MockCompanyRepository{}
	suite.provisioner = &MockProvisioner{}
	suite.storage = &MockStorage{}
	suite.service = NewCompanyService(suite.mockRepo, suite.provisioner, suite.storage)
	suite.ctx = context.Background()

	suite.mockRepo.Test(suite.T())
	suite.provisioner.Test(suite.T())
}

func (suite *CompanyServiceTestSuite) TearDownTest() {
	suite.mockRepo.AssertExpectations(suite.T())
	suite.provisioner.AssertExpectations(suite.T())
	suite.storage.AssertExpectations(suite.T())
}

func TestCompanyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CompanyServiceTestSuite))
}

func (suite *CompanyServiceTestSuite) TestCreate_DerivesSchemaNameAndProvisions() {
	suite.mockRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Company")).Return(nil).Run(func(args mock.Arguments) {
		company := args.Get(1).(*models.Company)
		assert.Equal(suite.T(), "Acme Corp", company.Name)
		assert.Equal(suite.T(), "acme", company.Slug)
		assert.Equal(suite.T(), "c_acme", company.SchemaName)
		assert.NotEqual(suite.T(), uuid.Nil, company.ID)
	})
	suite.provisioner.On("Provision", suite.ctx, "c_acme").Return(nil)

	company, err := suite.service.Create(suite.ctx, &CreateCompanyRequest{Name: "Acme Corp", Slug: "Acme"})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "c_acme", company.SchemaName)
}

func (suite *CompanyServiceTestSuite) TestCreate_InvalidSlugFailsBeforeAnySideEffect() {
	_, err := suite.service.Create(suite.ctx, &CreateCompanyRequest{Name: "Bad", Slug: "1bad;DROP SCHEMA public"})

	var invalidName *common.InvalidNameError
	assert.ErrorAs(suite.T(), err, &invalidName)
	suite.mockRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
	suite.provisioner.AssertNotCalled(suite.T(), "Provision", mock.Anything, mock.Anything)
}

func (suite *CompanyServiceTestSuite) TestCreate_DuplicateSlugSurfacesConflict() {
	conflict := &common.ConflictError{Resource: "Company", Field: "slug"}
	suite.mockRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Company")).Return(conflict)

	_, err := suite.service.Create(suite.ctx, &CreateCompanyRequest{Name: "Acme", Slug: "acme"})
	var got *common.ConflictError
	assert.ErrorAs(suite.T(), err, &got)
	suite.provisioner.AssertNotCalled(suite.T(), "Provision", mock.Anything, mock.Anything)
}

func (suite *CompanyServiceTestSuite) TestMigrateAll_ProvisionsEverySchema() {
	suite.mockRepo.On("ListSchemaNames", suite.ctx).Return([]string{"c_acme", "c_globex"}, nil)
	suite.provisioner.On("Provision", suite.ctx, "c_acme").Return(nil)
	suite.provisioner.On("Provision", suite.ctx, "c_globex").Return(nil)

	migrated, err := suite.service.MigrateAll(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, migrated)
}

func (suite *CompanyServiceTestSuite) TestMigrateAll_StopsOnFirstFailureWithContext() {
	suite.mockRepo.On("ListSchemaNames", suite.ctx).Return([]string{"c_acme", "c_globex"}, nil)
	suite.provisioner.On("Provision", suite.ctx, "c_acme").Return(nil)
	suite.provisioner.On("Provision", suite.ctx, "c_globex").Return(errors.New("ddl failed"))

	migrated, err := suite.service.MigrateAll(suite.ctx)
	assert.ErrorContains(suite.T(), err, "c_globex")
	assert.Equal(suite.T(), 1, migrated)
}

func (suite *CompanyServiceTestSuite) TestUploadLogo_StoresObjectName() {
	company := &models.Company{ID: uuid.New(), Slug: "acme", SchemaName: "c_acme"}
	objectName := "logos/" + company.ID.String()

	suite.mockRepo.On("GetByID", suite.ctx, company.ID).Return(company, nil)
	suite.storage.On("UploadLogo", suite.ctx, objectName, mock.Anything, int64(42), "image/png").Return(nil)
	suite.mockRepo.On("SetLogoURL", suite.ctx, company.ID, objectName).Return(nil)

	err := suite.service.UploadLogo(suite.ctx, company.ID, nil, 42, "image/png")
	assert.NoError(suite.T(), err)
}

func (suite *CompanyServiceTestSuite) TestLogoURL_PresignsWithRequestContext() {
	objectName := "logos/abc"
	company := &models.Company{ID: uuid.New(), Slug: "acme", SchemaName: "c_acme", LogoURL: &objectName}

	suite.mockRepo.On("GetByID", suite.ctx, company.ID).Return(company, nil)
	suite.storage.On("LogoURL", suite.ctx, objectName, 15*time.Minute).Return("https://minio/presigned", nil)

	url, err := suite.service.LogoURL(suite.ctx, company.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "https://minio/presigned", url)
}
