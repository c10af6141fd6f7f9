package configuration

import "github.com/adampresley/configinator"

type Config struct {
	AlbumSource          string `flag:"albumsource" env:"ALBUM_SOURCE" default:"catalog" description:"Where albums come from. Valid values are 'catalog' (database and S3) and 'page' (a lightbox gallery page)"`
	AwsEndpointUrl       string `flag:"awsep" env:"AWS_ENDPOINT_URL" default:"http://localhost:4566" description:"AWS endpoint URL"`
	AwsRegion            string `flag:"awsregion" env:"AWS_REGION" default:"us-central-1" description:"AWS region"`
	AwsAccessKeyId       string `flag:"awsaccesskeyid" env:"AWS_ACCESS_KEY_ID" default:"" description:"AWS access key ID"`
	AwsSecretAccessKey   string `flag:"awssecretaccesskey" env:"AWS_SECRET_ACCESS_KEY" default:"" description:"AWS secret access key"`
	AwsBucket            string `flag:"awsbucket" env:"AWS_BUCKET" default:"lightboxpreload" description:"S3 bucket holding album images"`
	CookieSecret         string `flag:"cookiesecret" env:"COOKIE_SECRET" default:"password" description:"Secret for encoding cookies"`
	DSN                  string `flag:"dsn" env:"DSN" default:"file:./data/lightboxpreload.db" description:"Data source name"`
	FetchTimeoutSeconds  int    `flag:"fetchtimeout" env:"FETCH_TIMEOUT_SECONDS" default:"60" description:"Seconds before an image fetch is abandoned"`
	GalleryBaseURL       string `flag:"gallerybaseurl" env:"GALLERY_BASE_URL" default:"" description:"Base URL for relative links when the gallery page is read from disk"`
	GalleryPage          string `flag:"gallerypage" env:"GALLERY_PAGE" default:"" description:"File path or URL of the lightbox gallery page used when the album source is 'page'"`
	Host                 string `flag:"host" env:"HOST" default:"localhost:8081" description:"The address and port to bind the HTTP server to"`
	LogLevel             string `flag:"loglevel" env:"LOG_LEVEL" default:"debug" description:"The log level to use. Valid values are 'debug', 'info', 'warn', and 'error'"`
	MaxCacheWorkers      int    `flag:"mcc" env:"MAX_CACHE_WORKERS" default:"20" description:"Maximum number of concurrent thumbnail workers"`
	MaxConcurrentFetches int    `flag:"mcf" env:"MAX_CONCURRENT_FETCHES" default:"4" description:"Maximum number of concurrent image fetches per viewer"`
	SessionIdleMinutes   int    `flag:"sessionidle" env:"SESSION_IDLE_MINUTES" default:"30" description:"Minutes a viewer may sit idle before its cache is released"`
	ThumbnailHeight      int    `flag:"thumbheight" env:"THUMBNAIL_HEIGHT" default:"160" description:"Maximum thumbnail height in pixels"`
	ThumbnailWidth       int    `flag:"thumbwidth" env:"THUMBNAIL_WIDTH" default:"120" description:"Maximum thumbnail width in pixels"`
	WarmThumbnails       bool   `flag:"warmthumbnails" env:"WARM_THUMBNAILS" default:"true" description:"Load every thumbnail of an album as soon as it is opened"`
	WrapAround           bool   `flag:"wraparound" env:"WRAP_AROUND" default:"false" description:"Treat the first and last images of an album as neighbors"`
}

func LoadConfig() Config {
	config := Config{}
	configinator.Behold(&config)
	return config
}
