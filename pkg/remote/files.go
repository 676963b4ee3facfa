package remote

import (
	"io"
	"os"

	"github.com/pkg/sftp"
	"github.com/rileyhilliard/drover/internal/errors"
)

// PutFile copies a local file's bytes to a remote path over an SFTP
// sub-channel on the established connection. The sub-channel is released
// on completion or failure. Transient failures propagate to the caller;
// no retry happens at this layer.
func (c *Connection) PutFile(localPath, remotePath string) error {
	if !c.established() {
		return ErrNotConnected
	}

	sftpClient, err := sftp.NewClient(c.client)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrTransfer,
			"Failed to open SFTP channel to "+c.host,
			"Check the remote host has the sftp subsystem enabled.")
	}
	defer sftpClient.Close()

	local, err := os.Open(localPath)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrTransfer,
			"Failed to read local file "+localPath,
			"Check the file exists and is readable.")
	}
	defer local.Close()

	remote, err := sftpClient.Create(remotePath)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrTransfer,
			"Failed to create remote file "+remotePath,
			"Check the remote directory exists and is writable.")
	}
	defer remote.Close()

	if _, err := io.Copy(remote, local); err != nil {
		return errors.WrapWithCode(err, errors.ErrTransfer,
			"Failed to copy "+localPath+" to "+c.host+":"+remotePath,
			"The transfer may have been interrupted. Retry the upload.")
	}

	return nil
}
