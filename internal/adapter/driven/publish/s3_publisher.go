package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/bettergovph/transparency-dashboard/internal/logger"
)

// S3Publisher envia arquivos para um bucket S3.
type S3Publisher struct {
	target      Target
	client      *s3.Client
	concurrency int
}

// NewS3Publisher carrega a configuração compartilhada da AWS (perfil e região opcionais)
// e registra a identidade usada antes do primeiro upload.
func NewS3Publisher(ctx context.Context, target Target, profile, region string, concurrency int) (*S3Publisher, error) {
	log := logger.FromContext(ctx)

	var opts []func(*config.LoadOptions) error
	if profile != "" {
		if !profileExists(profile) {
			log.Warn().Str("profile", profile).Strs("known", AWSProfiles()).Msg("AWS profile not found in shared config files")
		}
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for profile %s: %w", profile, err)
	}

	identity, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("error getting caller identity: %w", err)
	}
	log.Info().
		Str("account", aws.ToString(identity.Account)).
		Str("arn", aws.ToString(identity.Arn)).
		Str("bucket", target.Bucket).
		Msg("publishing to S3")

	return &S3Publisher{target: target, client: s3.NewFromConfig(cfg), concurrency: concurrency}, nil
}

func (p *S3Publisher) Publish(ctx context.Context, files []string) ([]string, error) {
	return uploadAll(ctx, files, p.concurrency, p.upload)
}

func (p *S3Publisher) upload(ctx context.Context, file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.target.Bucket),
		Key:         aws.String(p.target.Key(file)),
		Body:        f,
		ContentType: aws.String(contentType(file)),
	})
	if err != nil {
		return "", err
	}
	log := logger.FromContext(ctx)
	log.Debug().Str("file", file).Str("uri", p.target.URI(file)).Msg("uploaded")
	return p.target.URI(file), nil
}

func (p *S3Publisher) Close() error {
	return nil
}

var profileRegex = regexp.MustCompile(`\[([^]]+)\]`)

// AWSProfiles lists the profiles of ~/.aws/credentials and ~/.aws/config.
func AWSProfiles() []string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return []string{"default"}
	}

	profiles := make(map[string]bool)
	parseFile := func(path string, isConfig bool) {
		content, err := os.ReadFile(path)
		if err != nil {
			return
		}
		for _, match := range profileRegex.FindAllStringSubmatch(string(content), -1) {
			name := match[1]
			if isConfig {
				name = strings.TrimPrefix(name, "profile ")
			}
			profiles[name] = true
		}
	}
	parseFile(filepath.Join(homeDir, ".aws", "credentials"), false)
	parseFile(filepath.Join(homeDir, ".aws", "config"), true)

	if len(profiles) == 0 {
		profiles["default"] = true
	}
	result := make([]string, 0, len(profiles))
	for name := range profiles {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

func profileExists(profile string) bool {
	for _, p := range AWSProfiles() {
		if p == profile {
			return true
		}
	}
	return false
}
