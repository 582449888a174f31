package vicinity

// Version is the library version. Overridable at build time:
//
//	go build -ldflags "-X github.com/vicinitylabs/vicinity.Version=v1.2.3"
var Version = "1.0.0"
