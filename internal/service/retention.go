package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// Retainer copies release artifacts to a retention host over SFTP after a
// successful build, so a failed or interrupted publish can be redone out
// of band without rebuilding.
type Retainer struct {
	username   string
	hostname   string
	privateKey []byte
	remoteDir  string
}

func NewRetainer(username, hostname string, privateKey []byte, remoteDir string) *Retainer {
	return &Retainer{
		username:   username,
		hostname:   hostname,
		privateKey: privateKey,
		remoteDir:  remoteDir,
	}
}

func (r *Retainer) Retain(ctx context.Context, localPath string) error {
	signer, err := ssh.ParsePrivateKey(r.privateKey)
	if err != nil {
		return err
	}
	cc := &ssh.ClientConfig{
		User:            r.username,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         10 * time.Second,
	}

	hostname := r.hostname
	if !strings.Contains(hostname, ":") {
		hostname += ":22"
	}
	client, err := ssh.Dial("tcp", hostname, cc)
	if err != nil {
		return err
	}
	defer client.Close()

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		return err
	}
	defer sftpClient.Close()

	remoteSubdir := path.Join(r.remoteDir, time.Now().UTC().Format("20060102_150405"))
	if err := sftpClient.MkdirAll(remoteSubdir); err != nil {
		return err
	}

	local, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer local.Close()

	remotePath := path.Join(remoteSubdir, path.Base(localPath))
	remote, err := sftpClient.Create(remotePath)
	if err != nil {
		return err
	}
	defer remote.Close()

	if _, err := io.Copy(remote, local); err != nil {
		return fmt.Errorf("err copying %s to %s: %w", localPath, remotePath, err)
	}

	return nil
}
